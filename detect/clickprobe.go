package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/pagedetect"
)

// ClickProbe clicks a pagination candidate and measures what actually
// changed: the URL, the product identity set, or the document height. The
// page is rolled back to its starting URL and scroll position before the
// probe returns, whatever happened in between.
type ClickProbe struct {
	config Config
}

// NewClickProbe returns a ClickProbe with the given configuration.
func NewClickProbe(config Config) *ClickProbe {
	return &ClickProbe{config: config}
}

// Test clicks the candidate and reports the outcome. A click that fails, or
// succeeds without changing anything material, is a valid negative result,
// not an error; errors mean the page itself stopped responding.
func (p *ClickProbe) Test(ctx context.Context, page pagedetect.Page, candidate pagedetect.PaginationCandidate, itemSelector string) (*pagedetect.ClickProbeResult, error) {
	startURL, err := page.URL(ctx)
	if err != nil {
		return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "read page URL: %v", err)
	}
	startMetrics, err := readScrollMetrics(ctx, page)
	if err != nil {
		return nil, err
	}
	baseline, err := collectIdentities(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}

	defer p.rollback(ctx, page, startURL, startMetrics.Y)

	result := &pagedetect.ClickProbeResult{InitialCount: baseline.Len()}

	if err := p.click(ctx, page, candidate); err != nil {
		result.Error = err.Error()
		return result, nil
	}

	// Give a possible navigation time to commit, then let AJAX content
	// settle before measuring.
	_ = page.WaitStable(ctx, p.config.NavigationTimeout)
	if err := sleep(ctx, p.config.ClickSettle); err != nil {
		return nil, err
	}

	endURL, err := page.URL(ctx)
	if err != nil {
		return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "read page URL after click: %v", err)
	}
	result.URLChanged = endURL != startURL
	if result.URLChanged {
		result.OffsetPattern = pagedetect.InferOffset(startURL, endURL)
	}

	after, err := collectIdentities(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}
	result.FinalCount = after.Len()
	result.NewProductsFound = baseline.Diff(after)

	endMetrics, err := readScrollMetrics(ctx, page)
	if err != nil {
		return nil, err
	}
	heightGrew := endMetrics.Height-startMetrics.Height > p.config.MinHeightGrowth

	result.Success = result.URLChanged || result.NewProductsFound > 0 || heightGrew
	if !result.Success {
		result.Error = "click succeeded but nothing changed"
	}
	return result, nil
}

// click tries each click strategy in escalation order: native click, forced
// click, synthetic in-page pointer events, coordinate click at the element
// center. The first strategy that lands without an error wins.
func (p *ClickProbe) click(ctx context.Context, page pagedetect.Page, candidate pagedetect.PaginationCandidate) error {
	var lastErr error

	if lastErr = page.Click(ctx, candidate.Selector); lastErr == nil {
		return nil
	}
	if err := page.ForceClick(ctx, candidate.Selector); err == nil {
		return nil
	} else {
		lastErr = err
	}

	if raw, err := page.Eval(ctx, pointerClickJS, candidate.Selector); err == nil {
		var dispatched bool
		if json.Unmarshal(raw, &dispatched) == nil && dispatched {
			return nil
		}
		lastErr = fmt.Errorf("synthetic pointer events found no element for %q", candidate.Selector)
	} else {
		lastErr = err
	}

	if raw, err := page.Eval(ctx, viewportBoxJS, candidate.Selector); err == nil {
		var box *pagedetect.BoundingBox
		if json.Unmarshal(raw, &box) == nil && box != nil && box.Width > 0 {
			x, y := box.Center()
			if err := page.ClickAt(ctx, x, y); err == nil {
				return nil
			} else {
				lastErr = err
			}
		}
	}

	return pagedetect.Errorf(pagedetect.EUNAVAILABLE, "all click strategies failed for %q: %v", candidate.Selector, lastErr)
}

// rollback returns the page to its starting URL and scroll position, best
// effort, on a fresh context so cancellation cannot strand the page on the
// wrong URL. Idempotent: rolling back an unchanged page is a no-op.
func (p *ClickProbe) rollback(ctx context.Context, page pagedetect.Page, startURL string, startY float64) {
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	current, err := page.URL(restoreCtx)
	if err == nil && current != startURL {
		if err := page.Navigate(restoreCtx, startURL); err == nil {
			_ = page.WaitStable(restoreCtx, p.config.NavigationTimeout)
		}
	}
	_ = scrollTo(restoreCtx, page, startY)
}
