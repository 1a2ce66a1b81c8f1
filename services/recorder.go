package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reloadradar/models"
	"reloadradar/storage"
	"reloadradar/utils"

	"github.com/shopspring/decimal"
)

// RecordOutcome says whether a price was written
type RecordOutcome int

const (
	RecordSkipped RecordOutcome = iota
	RecordCreated
)

func (o RecordOutcome) String() string {
	if o == RecordCreated {
		return "created"
	}
	return "skipped"
}

// Recorder writes a price observation only when the price for a
// (product, supplier) pair has changed
type Recorder struct {
	store  storage.CatalogStore
	locks  *utils.KeyedMutex
	logger *utils.Logger
	now    func() time.Time
}

func NewRecorder(store storage.CatalogStore, logger *utils.Logger) *Recorder {
	return &Recorder{
		store:  store,
		locks:  utils.NewKeyedMutex(),
		logger: logger,
		now:    time.Now,
	}
}

// Record compares price with the newest observation for exactly this pair and
// creates a new one if there is none or it differs. A lost race at the store
// is retried once against a fresh read.
func (r *Recorder) Record(ctx context.Context, product models.Product, supplier models.Supplier, price decimal.Decimal, url string) (RecordOutcome, error) {
	unlock := r.locks.Lock(fmt.Sprintf("%d/%d", product.ID, supplier.ID))
	defer unlock()

	for attempt := 0; attempt < 2; attempt++ {
		var prevID int64
		last, err := r.store.LastPriceObservation(ctx, product.ID, supplier.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return RecordSkipped, fmt.Errorf("failed to read last price for '%s': %w", product.Name, err)
		default:
			if last.Price.Equal(price) {
				r.logger.Debug("'%s' @ %s unchanged at %s", product.Name, supplier.Name, price)
				return RecordSkipped, nil
			}
			prevID = last.ID
		}

		_, err = r.store.CreatePriceObservation(ctx, models.PriceObservation{
			ProductID:   product.ID,
			SupplierID:  supplier.ID,
			Price:       price,
			SourceURL:   url,
			RetrievedAt: r.now(),
		}, prevID)
		if errors.Is(err, storage.ErrRecordConflict) {
			r.logger.Warn("Price for '%s' @ %s changed underneath us, re-reading", product.Name, supplier.Name)
			continue
		}
		if err != nil {
			return RecordSkipped, fmt.Errorf("failed to record price for '%s': %w", product.Name, err)
		}

		r.logger.Info("New price for '%s' @ %s: %s", product.Name, supplier.Name, price)
		return RecordCreated, nil
	}
	return RecordSkipped, fmt.Errorf("price for '%s' @ %s: %w", product.Name, supplier.Name, storage.ErrRecordConflict)
}
