package scraper

import (
	"context"
	"fmt"
	"io"
	"log"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"intcomex-sync/internal/types"
)

// Browser wraps one long-lived chromedp session. A single session is kept
// for the whole run because the Intcomex login cookie must survive across
// category navigations.
type Browser struct {
	cfg     *types.Config
	logger  types.Logger
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewBrowser creates a browser client. Start must be called before use.
func NewBrowser(cfg *types.Config, logger types.Logger) *Browser {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &Browser{
		cfg:    cfg,
		logger: logger,
	}
}

// Start launches the browser and routes downloads into the configured
// download directory.
func (b *Browser) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false), // login is manual; the window must be visible
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	b.cancels = []context.CancelFunc{cancelBrowser, cancelAlloc}
	b.ctx = browserCtx

	err := chromedp.Run(browserCtx,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(b.cfg.DownloadDir),
	)
	if err != nil {
		b.Close()
		return fmt.Errorf("start browser: %w", err)
	}
	return nil
}

// Close tears down the browser session.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// Navigate loads a URL and gives dynamic content a moment to settle.
func (b *Browser) Navigate(url string) error {
	err := chromedp.Run(b.ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.cfg.RequestDelay),
	)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// PageSource returns the full HTML of the current page.
func (b *Browser) PageSource() (string, error) {
	var html string
	if err := chromedp.Run(b.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("get page source: %w", err)
	}
	return html, nil
}

// CurrentURL returns the browser's current location.
func (b *Browser) CurrentURL() (string, error) {
	var url string
	if err := chromedp.Run(b.ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("get location: %w", err)
	}
	return url, nil
}

// ClickJS clicks the first element matching the selector from JavaScript.
// A JS click penetrates promotional overlays that intercept native clicks.
func (b *Browser) ClickJS(selector string) error {
	script := fmt.Sprintf(`(function() {
		var el = document.querySelector(%q);
		if (!el) { return false; }
		el.scrollIntoView({block: 'center'});
		el.click();
		return true;
	})()`, selector)

	var clicked bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("element not found: %s", selector)
	}
	return nil
}

// Scroll scrolls the window to the given vertical offset, for lazy-loaded
// product grids.
func (b *Browser) Scroll(y int) error {
	script := fmt.Sprintf("window.scrollTo(0, %d)", y)
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}
