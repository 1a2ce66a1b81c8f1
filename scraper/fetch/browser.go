package fetch

import (
	"context"
	"fmt"
	"time"

	"reloadradar/utils"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome, for suppliers whose
// listings are filled in by JavaScript
type BrowserFetcher struct {
	rateLimiter *utils.RateLimiter
	maxRetries  int
	userAgent   string
	renderWait  time.Duration
	logger      *utils.Logger
}

func NewBrowserFetcher(rateLimiter *utils.RateLimiter, maxRetries int, userAgent string, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		rateLimiter: rateLimiter,
		maxRetries:  maxRetries,
		userAgent:   userAgent,
		renderWait:  3 * time.Second,
		logger:      logger,
	}
}

// newContext creates a fresh chromedp context (one browser, one tab) bound to parent
func (f *BrowserFetcher) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"),
		chromedp.UserAgent(f.userAgent),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	if err := f.rateLimiter.Wait(ctx, host); err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}

	browserCtx, cancel := f.newContext(ctx)
	defer cancel()

	var html string
	err = utils.RetryWithBackoff(ctx, f.maxRetries, func() error {
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(f.renderWait),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		return nil
	}, f.logger)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	return []byte(html), nil
}
