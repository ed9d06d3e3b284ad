package pagedetect

import (
	"context"
	"encoding/json"
	"time"
)

// Page is the page-control surface the detection engine drives. It is the
// only mutable shared resource in a detection run; whoever changes its URL
// or scroll position must restore it before returning.
//
// Implementations may use any CDP-capable engine. All methods honor context
// cancellation so an in-flight probe can be aborted without leaving the page
// mid-scroll or mid-navigation.
type Page interface {
	// URL returns the page's current URL.
	URL(ctx context.Context) (string, error)

	// Navigate loads the URL and waits for the load event or context
	// expiry, whichever comes first.
	Navigate(ctx context.Context, url string) error

	// Eval runs a JavaScript function expression in page context with the
	// given arguments and returns its JSON-serialized result.
	Eval(ctx context.Context, js string, args ...any) (json.RawMessage, error)

	// Click scrolls the first element matching selector into view and
	// performs a native input click on it.
	Click(ctx context.Context, selector string) error

	// ForceClick clicks the element ignoring visibility and overlay
	// checks, for targets obscured by sticky banners or consent layers.
	ForceClick(ctx context.Context, selector string) error

	// ClickAt dispatches a native mouse click at viewport coordinates.
	ClickAt(ctx context.Context, x, y float64) error

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// WaitStable waits, best effort, until the page has settled (network
	// near-idle, DOM mutations quiesced) or the timeout elapses. It never
	// returns an error for a mere timeout.
	WaitStable(ctx context.Context, timeout time.Duration) error
}

// PageOpener opens a live page navigated to a URL. The release function
// closes the page and must be called when the caller is done with it.
type PageOpener interface {
	OpenPage(ctx context.Context, url string) (Page, func(), error)
}
