package mock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fwojciec/pagedetect"
)

var _ pagedetect.Page = (*Page)(nil)

// Page is a mock implementation of pagedetect.Page.
type Page struct {
	URLFn        func(ctx context.Context) (string, error)
	NavigateFn   func(ctx context.Context, url string) error
	EvalFn       func(ctx context.Context, js string, args ...any) (json.RawMessage, error)
	ClickFn      func(ctx context.Context, selector string) error
	ForceClickFn func(ctx context.Context, selector string) error
	ClickAtFn    func(ctx context.Context, x, y float64) error
	ScreenshotFn func(ctx context.Context) ([]byte, error)
	WaitStableFn func(ctx context.Context, timeout time.Duration) error
}

func (p *Page) URL(ctx context.Context) (string, error) {
	return p.URLFn(ctx)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.NavigateFn(ctx, url)
}

func (p *Page) Eval(ctx context.Context, js string, args ...any) (json.RawMessage, error) {
	return p.EvalFn(ctx, js, args...)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.ClickFn(ctx, selector)
}

func (p *Page) ForceClick(ctx context.Context, selector string) error {
	return p.ForceClickFn(ctx, selector)
}

func (p *Page) ClickAt(ctx context.Context, x, y float64) error {
	return p.ClickAtFn(ctx, x, y)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.ScreenshotFn(ctx)
}

func (p *Page) WaitStable(ctx context.Context, timeout time.Duration) error {
	return p.WaitStableFn(ctx, timeout)
}

var _ pagedetect.PageOpener = (*PageOpener)(nil)

// PageOpener is a mock implementation of pagedetect.PageOpener.
type PageOpener struct {
	OpenPageFn func(ctx context.Context, url string) (pagedetect.Page, func(), error)
}

func (o *PageOpener) OpenPage(ctx context.Context, url string) (pagedetect.Page, func(), error) {
	return o.OpenPageFn(ctx, url)
}
