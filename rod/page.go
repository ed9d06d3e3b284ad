// Package rod implements browser automation using go-rod.
package rod

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fwojciec/pagedetect"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// stableInterval is the quiet window WaitStable requires before declaring
// the page settled.
const stableInterval = 300 * time.Millisecond

// Ensure Page implements pagedetect.Page at compile time.
var _ pagedetect.Page = (*Page)(nil)

// Page adapts a rod page to the pagedetect page-control surface. A Page is
// bound to a single detection run and must not be shared across goroutines.
type Page struct {
	page *rod.Page
}

// NewPage wraps an existing rod page.
func NewPage(page *rod.Page) *Page {
	return &Page{page: page}
}

// URL returns the page's current URL.
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// Navigate loads the URL and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// Eval runs a JavaScript function expression in page context and returns
// its JSON-serialized result.
func (p *Page) Eval(ctx context.Context, js string, args ...any) (json.RawMessage, error) {
	obj, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj.Value)
}

// Click scrolls the first matching element into view and performs a native
// input click on it.
func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// ForceClick clicks the element via its DOM click method, bypassing rod's
// visibility and overlay interactability checks.
func (p *Page) ForceClick(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	_, err = el.Eval(`() => this.click()`)
	return err
}

// ClickAt dispatches a native mouse click at viewport coordinates.
func (p *Page) ClickAt(ctx context.Context, x, y float64) error {
	page := p.page.Context(ctx)
	if err := page.Mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
		return err
	}
	return page.Mouse.Click(proto.InputMouseButtonLeft, 1)
}

// Screenshot captures the current viewport as PNG bytes.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// WaitStable waits until the DOM and network go quiet or the timeout
// elapses. Timeouts are not errors; a busy page is measured as-is.
func (p *Page) WaitStable(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = p.page.Context(ctx).Timeout(timeout).WaitStable(stableInterval)
	return nil
}

// Close closes the underlying browser page.
func (p *Page) Close() error {
	return p.page.Close()
}
