package services

import (
	"strings"

	"reloadradar/models"
)

type indexedProduct struct {
	product models.Product
	folded  string
}

type indexedManufacturer struct {
	id     int64
	folded string
}

// Matcher resolves free-text listing names to catalog products by
// case-insensitive substring containment. It is immutable once built and
// safe for concurrent use.
type Matcher struct {
	manufacturers  []indexedManufacturer
	products       []indexedProduct
	byManufacturer map[int64][]indexedProduct
}

// NewMatcher indexes a catalog snapshot. Slices are expected in catalog
// order (ascending ID); that order breaks ties.
func NewMatcher(manufacturers []models.Manufacturer, products []models.Product) *Matcher {
	m := &Matcher{byManufacturer: make(map[int64][]indexedProduct)}
	for _, mf := range manufacturers {
		folded := strings.ToLower(strings.TrimSpace(mf.Name))
		if folded == "" {
			continue
		}
		m.manufacturers = append(m.manufacturers, indexedManufacturer{id: mf.ID, folded: folded})
	}
	for _, p := range products {
		folded := strings.ToLower(strings.TrimSpace(p.Name))
		if folded == "" {
			continue
		}
		ip := indexedProduct{product: p, folded: folded}
		m.products = append(m.products, ip)
		m.byManufacturer[p.ManufacturerID] = append(m.byManufacturer[p.ManufacturerID], ip)
	}
	return m
}

// Manufacturer returns the candidate manufacturer for a listing name.
// When several manufacturer names appear in it the longest one wins, so
// "Acme Pro X100" belongs to "Acme Pro" rather than "Acme".
func (m *Matcher) Manufacturer(name string) (int64, bool) {
	folded := strings.ToLower(name)
	var best indexedManufacturer
	for _, mf := range m.manufacturers {
		if len(mf.folded) > len(best.folded) && strings.Contains(folded, mf.folded) {
			best = mf
		}
	}
	return best.id, best.folded != ""
}

// Match returns the product a listing name refers to. Products are searched
// within the candidate manufacturer when there is one, otherwise across the
// whole catalog.
func (m *Matcher) Match(name string) (models.Product, bool) {
	candidates := m.products
	if id, ok := m.Manufacturer(name); ok {
		candidates = m.byManufacturer[id]
	}
	return firstContained(candidates, strings.ToLower(name))
}

// MatchAny ignores manufacturers and searches the whole catalog
func (m *Matcher) MatchAny(name string) (models.Product, bool) {
	return firstContained(m.products, strings.ToLower(name))
}

func firstContained(products []indexedProduct, folded string) (models.Product, bool) {
	for _, p := range products {
		if strings.Contains(folded, p.folded) {
			return p.product, true
		}
	}
	return models.Product{}, false
}
