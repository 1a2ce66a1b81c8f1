package listing

import "fmt"

// ParseError means the markup did not have the expected structure at all,
// which usually means the supplier changed their site
type ParseError struct {
	Selector string
	URL      string
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("listing parse: selector %q matched nothing", e.Selector)
	}
	return fmt.Sprintf("listing parse: selector %q matched nothing on %s", e.Selector, e.URL)
}
