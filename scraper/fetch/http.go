package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"reloadradar/utils"

	"github.com/hashicorp/go-retryablehttp"
)

// maxBodySize caps how much of a listing page is read
const maxBodySize = 16 << 20

// HTTPFetcher downloads pages with retries and per-host rate limiting
type HTTPFetcher struct {
	client      *retryablehttp.Client
	rateLimiter *utils.RateLimiter
	userAgent   string
	logger      *utils.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. maxRetries is the number of retries
// after the first attempt for 5xx/429/connection failures.
func NewHTTPFetcher(rateLimiter *utils.RateLimiter, maxRetries int, userAgent string, logger *utils.Logger) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.Logger = leveledLogger{logger}

	return &HTTPFetcher{
		client:      client,
		rateLimiter: rateLimiter,
		userAgent:   userAgent,
		logger:      logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	if err := f.rateLimiter.Wait(ctx, host); err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	f.logger.Debug("GET %s", pageURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &FetchError{URL: pageURL, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: fmt.Errorf("failed to read body: %w", err)}
	}
	return body, nil
}

// leveledLogger lets retryablehttp log through our logger
type leveledLogger struct {
	l *utils.Logger
}

func (ll leveledLogger) Error(msg string, kv ...interface{}) { ll.l.Error("%s %v", msg, kv) }
func (ll leveledLogger) Info(msg string, kv ...interface{})  { ll.l.Debug("%s %v", msg, kv) }
func (ll leveledLogger) Debug(msg string, kv ...interface{}) { ll.l.Debug("%s %v", msg, kv) }
func (ll leveledLogger) Warn(msg string, kv ...interface{})  { ll.l.Warn("%s %v", msg, kv) }
