package detect

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fwojciec/pagedetect"
)

// ScrollProbe tests whether scrolling surfaces more products. It accumulates
// product identities rather than counting elements, so virtual-scroll pages
// that recycle DOM nodes neither under- nor over-report.
type ScrollProbe struct {
	config Config
}

// NewScrollProbe returns a ScrollProbe with the given configuration.
func NewScrollProbe(config Config) *ScrollProbe {
	return &ScrollProbe{config: config}
}

// Probe scrolls the page in fixed steps, merging newly visible identities
// after each step, until the identity set stops growing, the distance cap
// is hit, or the document bottom holds through the grace re-check. The page
// is scrolled back to where it started before returning, on every path.
func (p *ScrollProbe) Probe(ctx context.Context, page pagedetect.Page, itemSelector string) (*pagedetect.ScrollProbeResult, error) {
	origin, err := readScrollMetrics(ctx, page)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Restore on a fresh context so a cancelled probe still resets
		// the page for whoever runs next.
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = scrollTo(restoreCtx, page, origin.Y)
	}()

	if err := p.locateInitialItems(ctx, page, itemSelector); err != nil {
		return nil, err
	}

	seen, err := collectIdentities(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}
	result := &pagedetect.ScrollProbeResult{InitialCount: seen.Len()}

	// Start measuring just past the last visible item, so everything the
	// loop surfaces is genuinely new content.
	y, err := p.lastItemBottom(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}

	metrics, err := readScrollMetrics(ctx, page)
	if err != nil {
		return nil, err
	}
	startY := y
	lastHeight := metrics.Height
	lastCount, err := countItems(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}

	noChange := 0
	for noChange < p.config.MaxNoChange && y-startY < float64(p.config.MaxScrollDistance) {
		y += float64(p.config.ScrollStep)
		if err := scrollTo(ctx, page, y); err != nil {
			return nil, err
		}
		// Observer- and event-driven loaders often ignore the scroll
		// itself; poke them on every step, not just at the bottom.
		if err := p.nudge(ctx, page); err != nil {
			return nil, err
		}
		if err := sleep(ctx, p.config.ScrollSettle); err != nil {
			return nil, err
		}
		result.ScrollIterations++

		metrics, err = readScrollMetrics(ctx, page)
		if err != nil {
			return nil, err
		}
		batch, err := collectIdentities(ctx, page, itemSelector)
		if err != nil {
			return nil, err
		}
		count, err := countItems(ctx, page, itemSelector)
		if err != nil {
			return nil, err
		}

		added := seen.Merge(batch)
		heightGrew := metrics.Height > lastHeight
		countGrew := count > lastCount
		lastHeight = metrics.Height
		lastCount = count

		switch {
		case added > 0:
			noChange = 0
			result.ScrollPositions = append(result.ScrollPositions, y)
		case heightGrew || countGrew:
			// Content moved without new identities: lazy rendering in
			// flight, not stagnation. Hold the counter.
		default:
			noChange++
		}

		// At the document bottom, nudge observer-based loaders and give
		// the page one grace period to grow before concluding it is done.
		if metrics.Y+metrics.Viewport >= metrics.Height-1 {
			if err := p.nudge(ctx, page); err != nil {
				return nil, err
			}
			if err := sleep(ctx, p.config.BottomGrace); err != nil {
				return nil, err
			}
			after, err := readScrollMetrics(ctx, page)
			if err != nil {
				return nil, err
			}
			if after.Height <= metrics.Height {
				break
			}
			lastHeight = after.Height
		}
	}

	result.FinalCount = seen.Len()
	result.HasInfiniteScroll = result.Gain() > 0
	return result, nil
}

// nudge fires synthetic scroll and resize events, scrolls lazy-load
// sentinels into view, and clicks any newly visible load-more control.
func (p *ScrollProbe) nudge(ctx context.Context, page pagedetect.Page) error {
	if _, err := page.Eval(ctx, nudgeLazyLoadJS); err != nil {
		return pagedetect.Errorf(pagedetect.EUNAVAILABLE, "lazy-load nudge failed: %v", err)
	}
	return nil
}

// locateInitialItems steps the viewport down until at least one item is
// visible, for pages that render the product grid below the fold or only
// on first scroll. A page with no items at all is not an error; the probe
// simply measures nothing.
func (p *ScrollProbe) locateInitialItems(ctx context.Context, page pagedetect.Page, itemSelector string) error {
	count, err := countItems(ctx, page, itemSelector)
	if err != nil || count > 0 {
		return err
	}
	metrics, err := readScrollMetrics(ctx, page)
	if err != nil {
		return err
	}
	y := metrics.Y
	for i := 0; i < p.config.MaxDiscoveryScrolls && count == 0; i++ {
		y += metrics.Viewport
		if err := scrollTo(ctx, page, y); err != nil {
			return err
		}
		if err := sleep(ctx, p.config.ScrollSettle); err != nil {
			return err
		}
		if count, err = countItems(ctx, page, itemSelector); err != nil {
			return err
		}
	}
	return nil
}

// lastItemBottom returns the page-Y coordinate just past the last visible
// item, falling back to the current scroll position when nothing matches.
func (p *ScrollProbe) lastItemBottom(ctx context.Context, page pagedetect.Page, itemSelector string) (float64, error) {
	raw, err := page.Eval(ctx, lastItemBottomJS, itemSelector)
	if err != nil {
		return 0, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "last item lookup failed: %v", err)
	}
	var bottom float64
	if err := json.Unmarshal(raw, &bottom); err != nil {
		return 0, pagedetect.Errorf(pagedetect.EINTERNAL, "decode last item position: %v", err)
	}
	if bottom > 0 {
		if err := scrollTo(ctx, page, bottom); err != nil {
			return 0, err
		}
		return bottom, nil
	}
	metrics, err := readScrollMetrics(ctx, page)
	if err != nil {
		return 0, err
	}
	return metrics.Y, nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
