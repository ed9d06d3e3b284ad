package detect_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
)

// fakePage simulates a storefront page for probe tests. It dispatches on
// the injected script's distinctive fragments and models scroll position,
// document height, and visible identities as mutable state, so tests can
// script how the "site" reacts to scrolling and clicking.
type fakePage struct {
	url      string
	scrollY  float64
	viewport float64
	height   float64
	html     string

	// identities/count report what the item selector currently matches.
	identities func() []string
	count      func() int

	// candidates is what the in-page scan returns.
	candidates []pagedetect.PaginationCandidate

	// onScroll is called after every scroll position change.
	onScroll func(y float64)

	// onNudge is called when the lazy-load nudge script runs.
	onNudge func()

	// clickErr, forceClickErr, clickAtErr control the click escalation.
	clickErr      error
	forceClickErr error
	clickAtErr    error

	// onClick is called when any click strategy lands.
	onClick func()

	navigations []string
	clicks      []string
}

var _ pagedetect.Page = (*fakePage)(nil)

func (p *fakePage) URL(context.Context) (string, error) {
	return p.url, nil
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigations = append(p.navigations, url)
	p.url = url
	return nil
}

func (p *fakePage) Eval(_ context.Context, js string, args ...any) (json.RawMessage, error) {
	switch {
	case strings.Contains(js, "clickedLoadMore"):
		if p.onNudge != nil {
			p.onNudge()
		}
		return json.Marshal(map[string]bool{"clickedLoadMore": false})

	case strings.Contains(js, "currencyRe"):
		return json.Marshal(p.candidates)

	case strings.Contains(js, "dataAttrs"):
		var ids []string
		if p.identities != nil {
			ids = p.identities()
		}
		return json.Marshal(ids)

	case strings.Contains(js, "r.bottom + window.scrollY"):
		return json.Marshal(p.scrollY)

	case strings.Contains(js, "window.innerHeight"):
		return json.Marshal(map[string]float64{
			"y":        p.scrollY,
			"viewport": p.viewport,
			"height":   p.height,
		})

	case strings.Contains(js, "window.scrollTo(0, y)"):
		y, _ := args[0].(float64)
		if max := p.height - p.viewport; y > max {
			y = max
		}
		if y < 0 {
			y = 0
		}
		p.scrollY = y
		if p.onScroll != nil {
			p.onScroll(y)
		}
		return json.Marshal(nil)

	case strings.Contains(js, "fallbacks"):
		return json.Marshal(".product-card")

	case strings.Contains(js, "querySelectorAll(sel).length"):
		n := 0
		if p.count != nil {
			n = p.count()
		}
		return json.Marshal(n)

	case strings.Contains(js, "visible++"):
		return json.Marshal(map[string]any{"valid": true, "matches": 1})

	case strings.Contains(js, "firstUsable"):
		return json.Marshal(nil)

	case strings.Contains(js, "mousedown"):
		return json.Marshal(false)

	case strings.Contains(js, "block: 'center'"):
		return json.Marshal(nil)

	case strings.Contains(js, "outerHTML"):
		return json.Marshal(p.html)
	}
	return nil, fmt.Errorf("fakePage: unrecognized script: %.60s", js)
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	if p.clickErr != nil {
		return p.clickErr
	}
	p.clicks = append(p.clicks, selector)
	if p.onClick != nil {
		p.onClick()
	}
	return nil
}

func (p *fakePage) ForceClick(_ context.Context, selector string) error {
	if p.forceClickErr != nil {
		return p.forceClickErr
	}
	p.clicks = append(p.clicks, selector)
	if p.onClick != nil {
		p.onClick()
	}
	return nil
}

func (p *fakePage) ClickAt(_ context.Context, _, _ float64) error {
	if p.clickAtErr != nil {
		return p.clickAtErr
	}
	if p.onClick != nil {
		p.onClick()
	}
	return nil
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (p *fakePage) WaitStable(context.Context, time.Duration) error {
	return nil
}

// fastConfig returns probe tunables with zero settle delays so tests do not
// sleep.
func fastConfig() detect.Config {
	cfg := detect.DefaultConfig()
	cfg.ScrollSettle = 0
	cfg.BottomGrace = 0
	cfg.ClickSettle = 0
	cfg.NavigationTimeout = 0
	return cfg
}
