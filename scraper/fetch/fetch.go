package fetch

import (
	"context"
	"fmt"
	"net/url"
)

// Fetcher retrieves the raw markup of a listing page
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetchError wraps any network, timeout or HTTP status failure for a URL
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func hostOf(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", pageURL)
	}
	return u.Host, nil
}
