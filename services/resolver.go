package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"reloadradar/models"
	"reloadradar/storage"
	"reloadradar/utils"

	"github.com/shopspring/decimal"
)

// CatalogReferenceError means operator input pointed at a catalog entity that does not exist
type CatalogReferenceError struct {
	Entity string
	Ref    string
}

func (e *CatalogReferenceError) Error() string {
	return fmt.Sprintf("no %s matches %q", e.Entity, e.Ref)
}

// Resolution is the fate of one unmatched entry. Product is nil when the entry
// stays unresolved; Err is set when resolving it failed.
type Resolution struct {
	Entry   models.ListingEntry
	Product *models.Product
	Err     error
}

// Resolver decides what happens to entries the matcher could not place.
// Entries missing from the returned slice (e.g. after cancellation) count
// as unresolved.
type Resolver interface {
	Resolve(ctx context.Context, supplier models.Supplier, link models.Link, entries []models.ListingEntry) []Resolution
}

const reasonNoMatch = "no matching product"

// LogResolver files every unmatched entry in the snapshot error stream for
// later review and never touches the catalog
type LogResolver struct {
	snapshots *storage.SnapshotCache
	logger    *utils.Logger
	now       func() time.Time
}

func NewLogResolver(snapshots *storage.SnapshotCache, logger *utils.Logger) *LogResolver {
	return &LogResolver{snapshots: snapshots, logger: logger, now: time.Now}
}

func (r *LogResolver) Resolve(ctx context.Context, supplier models.Supplier, link models.Link, entries []models.ListingEntry) []Resolution {
	if len(entries) == 0 {
		return nil
	}

	unmatched := make([]models.UnmatchedEntry, 0, len(entries))
	for _, e := range entries {
		r.logger.Warn("No match for '%s' (%s) at %s", e.Name, e.Price, supplier.Name)
		unmatched = append(unmatched, models.UnmatchedEntry{ListingEntry: e, Reason: reasonNoMatch})
	}

	_, err := r.snapshots.CaptureErrors(ctx, link.Type, supplier.ID, unmatched, r.now())
	if err != nil {
		r.logger.Error("Failed to log unmatched entries for %s: %v", supplier.Name, err)
	}

	out := make([]Resolution, 0, len(entries))
	for _, e := range entries {
		out = append(out, Resolution{Entry: e, Err: err})
	}
	return out
}

// PromptResolver asks an operator to name each unmatched entry and creates
// the product when the catalog does not have it yet
type PromptResolver struct {
	store  storage.CatalogStore
	logger *utils.Logger

	mu  sync.Mutex
	in  *bufio.Scanner
	out io.Writer
	eof bool
}

func NewPromptResolver(store storage.CatalogStore, in io.Reader, out io.Writer, logger *utils.Logger) *PromptResolver {
	return &PromptResolver{
		store:  store,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (r *PromptResolver) Resolve(ctx context.Context, supplier models.Supplier, link models.Link, entries []models.ListingEntry) []Resolution {
	// one operator, one conversation at a time
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Resolution
	for _, e := range entries {
		if ctx.Err() != nil || r.eof {
			break
		}

		fmt.Fprintf(r.out, "\nNo match for '%s' (%s) at %s\n  %s\n", e.Name, e.Price, supplier.Name, e.URL)
		name, ok := r.prompt("Item name: ")
		if !ok {
			break
		}
		if name == "" {
			r.logger.Info("Skipping '%s'", e.Name)
			out = append(out, Resolution{Entry: e})
			continue
		}
		weight, ok := r.prompt("Item weight: ")
		if !ok {
			break
		}
		fragment, ok := r.prompt("Manufacturer: ")
		if !ok {
			break
		}

		product, err := r.resolve(ctx, name, weight, fragment)
		if err != nil {
			r.logger.Error("Could not resolve '%s': %v", e.Name, err)
			out = append(out, Resolution{Entry: e, Err: err})
			continue
		}
		out = append(out, Resolution{Entry: e, Product: &product})
	}
	return out
}

func (r *PromptResolver) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		r.eof = true
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// resolve prefers an existing product whose name appears in the operator's
// name, so near-duplicates are not created
func (r *PromptResolver) resolve(ctx context.Context, name, weightText, fragment string) (models.Product, error) {
	products, err := r.store.Products(ctx)
	if err != nil {
		return models.Product{}, err
	}
	if p, ok := NewMatcher(nil, products).MatchAny(name); ok {
		r.logger.Info("'%s' is existing product '%s'", name, p.Name)
		return p, nil
	}

	weight, err := decimal.NewFromString(weightText)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid weight %q: %w", weightText, err)
	}

	manufacturers, err := r.store.Manufacturers(ctx)
	if err != nil {
		return models.Product{}, err
	}
	folded := strings.ToLower(fragment)
	for _, m := range manufacturers {
		if folded != "" && strings.Contains(strings.ToLower(m.Name), folded) {
			return r.store.CreateProduct(ctx, name, weight, m.ID)
		}
	}
	return models.Product{}, &CatalogReferenceError{Entity: "manufacturer", Ref: fragment}
}
