package suppliers

import (
	"errors"
	"fmt"
	"sort"

	"reloadradar/models"
	"reloadradar/scraper/listing"
	"reloadradar/utils"
)

var (
	ErrUnknownAdapter  = errors.New("unknown listing adapter")
	ErrUnsupportedKind = errors.New("adapter does not support product kind")
)

// Adapter is one supplier's listing adapter: a parser per product kind it can read
type Adapter struct {
	Name    string
	Parsers map[models.ProductKind]listing.Parser
}

// Registry maps Supplier.Adapter values onto adapters
type Registry map[string]Adapter

// DefaultRegistry holds every adapter this build knows about
func DefaultRegistry(logger *utils.Logger) Registry {
	r := Registry{}
	for _, a := range []Adapter{
		SafariOutdoor(logger),
		Zimbi(logger),
		ShootingStuff(logger),
	} {
		r[a.Name] = a
	}
	return r
}

// Parser returns the parser for an adapter and product kind
func (r Registry) Parser(adapter string, kind models.ProductKind) (listing.Parser, error) {
	a, ok := r[adapter]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAdapter, adapter)
	}
	p, ok := a.Parsers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q cannot parse %q", ErrUnsupportedKind, adapter, kind)
	}
	return p, nil
}

// Names lists registered adapter names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
