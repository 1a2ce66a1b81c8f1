package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reloadradar/models"
	"reloadradar/scraper/fetch"
	"reloadradar/scraper/suppliers"
	"reloadradar/storage"
	"reloadradar/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Options tunes a Pipeline
type Options struct {
	FetchTimeout time.Duration
	MatchWorkers int // goroutines matching entries within one run
	LinkWorkers  int // runs in flight across links
}

// Pipeline runs the ingestion steps for supplier links
type Pipeline struct {
	catalog   storage.CatalogStore
	snapshots *storage.SnapshotCache
	fetcher   fetch.Fetcher
	adapters  suppliers.Registry
	recorder  *Recorder
	resolver  Resolver
	opts      Options
	logger    *utils.Logger
	now       func() time.Time
}

func NewPipeline(
	catalog storage.CatalogStore,
	snapshots *storage.SnapshotCache,
	fetcher fetch.Fetcher,
	adapters suppliers.Registry,
	resolver Resolver,
	opts Options,
	logger *utils.Logger,
) *Pipeline {
	if opts.MatchWorkers < 1 {
		opts.MatchWorkers = 1
	}
	if opts.LinkWorkers < 1 {
		opts.LinkWorkers = 1
	}
	return &Pipeline{
		catalog:   catalog,
		snapshots: snapshots,
		fetcher:   fetcher,
		adapters:  adapters,
		recorder:  NewRecorder(catalog, logger),
		resolver:  resolver,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// SelectLinks keeps supplier-owned links, optionally narrowed to one
// supplier (0 = all) and one product kind ("" = all)
func SelectLinks(links []models.Link, supplierID int64, kind models.ProductKind) []models.Link {
	return lo.Filter(links, func(l models.Link, _ int) bool {
		return l.TargetKind == models.TargetSupplier &&
			(supplierID == 0 || l.TargetID == supplierID) &&
			(kind == "" || l.Type == kind)
	})
}

// Validate checks up front that every link has a supplier and an adapter
// able to parse its product kind
func (p *Pipeline) Validate(ctx context.Context, links []models.Link) error {
	var errs []error
	for _, l := range links {
		if l.TargetKind != models.TargetSupplier {
			errs = append(errs, fmt.Errorf("link %d: owned by a %s, not a supplier", l.ID, l.TargetKind))
			continue
		}
		sup, err := p.catalog.Supplier(ctx, l.TargetID)
		if err != nil {
			errs = append(errs, fmt.Errorf("link %d: %w", l.ID, err))
			continue
		}
		if _, err := p.adapters.Parser(sup.Adapter, l.Type); err != nil {
			errs = append(errs, fmt.Errorf("link %d (%s): %w", l.ID, sup.Name, err))
		}
	}
	return errors.Join(errs...)
}

// RunAll runs every link on a bounded worker pool; reports keep the order of links
func (p *Pipeline) RunAll(ctx context.Context, links []models.Link, mode models.RunMode) []*models.RunReport {
	reports := make([]*models.RunReport, len(links))

	var g errgroup.Group
	g.SetLimit(p.opts.LinkWorkers)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			reports[i] = p.Run(ctx, link, mode)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// Run processes one link. It always returns a report; run-level failures
// (fetch, parse, replay, catalog load) are in report.Err.
func (p *Pipeline) Run(ctx context.Context, link models.Link, mode models.RunMode) *models.RunReport {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		LinkID:    link.ID,
		Kind:      link.Type,
		Mode:      mode,
		StartedAt: p.now(),
	}
	defer func() { report.FinishedAt = p.now() }()

	logger := p.logger.With("link", link.ID, "mode", string(mode))
	fail := func(err error) *models.RunReport {
		report.Err = err
		logger.Error("Run failed: %v", err)
		return report
	}

	if link.TargetKind != models.TargetSupplier {
		return fail(fmt.Errorf("link %d is owned by a %s; only supplier links carry prices", link.ID, link.TargetKind))
	}
	supplier, err := p.catalog.Supplier(ctx, link.TargetID)
	if err != nil {
		return fail(err)
	}
	report.SupplierID = supplier.ID
	report.Supplier = supplier.Name
	logger = logger.With("supplier", supplier.Name)

	entries, err := p.entries(ctx, link, supplier, mode, report)
	if err != nil {
		return fail(err)
	}
	report.Captured = len(entries)
	logger.Info("%d entries to process", len(entries))

	manufacturers, err := p.catalog.Manufacturers(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load manufacturers: %w", err))
	}
	products, err := p.catalog.Products(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load products: %w", err))
	}

	matches, err := p.matchAll(ctx, NewMatcher(manufacturers, products), entries)
	if err != nil {
		report.Cancelled = true
		return report
	}

	var unmatched []models.ListingEntry
	for i, e := range entries {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if !matches[i].ok {
			report.Unmatched++
			unmatched = append(unmatched, e)
			continue
		}
		report.Matched++
		p.record(ctx, logger, report, matches[i].product, supplier, e)
	}

	if !report.Cancelled && len(unmatched) > 0 {
		for _, res := range p.resolver.Resolve(ctx, supplier, link, unmatched) {
			switch {
			case res.Err != nil:
				report.Errors++
			case res.Product != nil:
				report.Resolved++
				p.record(ctx, logger, report, *res.Product, supplier, res.Entry)
			}
		}
		if ctx.Err() != nil {
			report.Cancelled = true
		}
	}

	logger.Info("Done: matched %d, recorded %d, unchanged %d, unmatched %d, errors %d",
		report.Matched, report.Recorded, report.Skipped, report.Unmatched, report.Errors)
	return report
}

// entries obtains the listing, from the network in fetch mode or from the
// newest snapshot in replay mode. Fetched entries are captured before
// anything else looks at them.
func (p *Pipeline) entries(ctx context.Context, link models.Link, supplier models.Supplier, mode models.RunMode, report *models.RunReport) ([]models.ListingEntry, error) {
	switch mode {
	case models.ModeReplay:
		snap, err := p.snapshots.Latest(ctx, link.Type, supplier.ID)
		if err != nil {
			return nil, err
		}
		report.SnapshotKey = snap.Key
		return snap.Entries, nil

	case models.ModeFetch:
		parser, err := p.adapters.Parser(supplier.Adapter, link.Type)
		if err != nil {
			return nil, err
		}

		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		markup, err := p.fetcher.Fetch(fetchCtx, link.URL)
		cancel()
		if err != nil {
			return nil, err
		}

		entries, err := parser.Parse(markup, link.URL)
		if err != nil {
			return nil, err
		}

		key, err := p.snapshots.Capture(ctx, link.Type, supplier.ID, entries, p.now())
		if err != nil {
			return nil, err
		}
		report.SnapshotKey = key
		return entries, nil
	}
	return nil, fmt.Errorf("unknown run mode %q", mode)
}

type matchResult struct {
	product models.Product
	ok      bool
}

func (p *Pipeline) matchAll(ctx context.Context, matcher *Matcher, entries []models.ListingEntry) ([]matchResult, error) {
	results := make([]matchResult, len(entries))
	workers := min(p.opts.MatchWorkers, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(entries); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				prod, ok := matcher.Match(entries[i].Name)
				results[i] = matchResult{product: prod, ok: ok}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) record(ctx context.Context, logger *utils.Logger, report *models.RunReport, product models.Product, supplier models.Supplier, e models.ListingEntry) {
	outcome, err := p.recorder.Record(ctx, product, supplier, e.Price, e.URL)
	switch {
	case err != nil:
		report.Errors++
		logger.Error("'%s': %v", e.Name, err)
	case outcome == RecordCreated:
		report.Recorded++
	default:
		report.Skipped++
	}
}
