package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/pagedetect"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// Ensure BrowserManager implements pagedetect.PageOpener at compile time.
var _ pagedetect.PageOpener = (*BrowserManager)(nil)

// BrowserManager opens detection pages against a managed headless Chrome,
// recycling the browser periodically. Chrome accumulates memory over long
// batch runs and the baseline never returns to initial levels even with
// proper page cleanup, so the browser is relaunched after a page budget.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	stealth   bool
	mu        sync.Mutex
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages opened before the browser is
// recycled. Defaults to 75.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithStealth opens pages with bot-detection evasion scripts injected.
// Storefronts increasingly block headless Chrome, and a blocked page
// detects as MethodNone.
func WithStealth(enabled bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.stealth = enabled
	}
}

// NewBrowserManager launches a headless Chrome browser. Close must be
// called when the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		stealth:  true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}

	return bm, nil
}

// OpenPage creates a page, navigates it to the URL, and waits for the load
// event. The release function closes the page and counts it toward the
// recycling budget; it must always be called.
func (bm *BrowserManager) OpenPage(ctx context.Context, url string) (pagedetect.Page, func(), error) {
	if bm.closed.Load() {
		return nil, nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "browser manager is closed")
	}

	browser := bm.currentBrowser()

	var page *rod.Page
	var err error
	if bm.stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "open page: %v", err)
	}

	release := func() {
		_ = page.Close()
		atomic.AddInt64(&bm.pageCount, 1)
	}

	wrapped := NewPage(page)
	if err := wrapped.Navigate(ctx, url); err != nil {
		release()
		return nil, nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "navigate to %q: %v", url, err)
	}
	return wrapped, release, nil
}

// currentBrowser returns the browser, recycling it first if the page budget
// is spent.
func (bm *BrowserManager) currentBrowser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}
	return bm.browser
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// launchBrowser starts a new browser instance with stability flags.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one. If the new
// launch fails the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&bm.pageCount, 0)
}

// LauncherPID returns the process ID of the browser launcher. It exists for
// tests verifying cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
