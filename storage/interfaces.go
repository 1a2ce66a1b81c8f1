package storage

import (
	"context"
	"errors"

	"reloadradar/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrRecordConflict   = errors.New("price observation changed concurrently")
	ErrAlreadyExists    = errors.New("already exists")
	ErrSnapshotNotFound = errors.New("no snapshot captured")
)

// CatalogStore is read/write access to the catalog the pipeline works against.
// Every call is expected to be consistent on its own.
type CatalogStore interface {
	Suppliers(ctx context.Context) ([]models.Supplier, error)
	Supplier(ctx context.Context, id int64) (models.Supplier, error)
	Manufacturers(ctx context.Context) ([]models.Manufacturer, error)
	Products(ctx context.Context) ([]models.Product, error)
	Links(ctx context.Context) ([]models.Link, error)

	// LastPriceObservation returns the newest observation for exactly this
	// (product, supplier) pair, or ErrNotFound.
	LastPriceObservation(ctx context.Context, productID, supplierID int64) (models.PriceObservation, error)
	// CreatePriceObservation inserts obs only if the newest observation for the
	// pair still has ID prevID (0 meaning "none"); otherwise ErrRecordConflict.
	CreatePriceObservation(ctx context.Context, obs models.PriceObservation, prevID int64) (models.PriceObservation, error)
	CreateProduct(ctx context.Context, name string, weight decimal.Decimal, manufacturerID int64) (models.Product, error)

	Close() error
}

// BlobStore is a flat key/value store that can refuse to overwrite
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// PutNew stores value under key, failing with ErrAlreadyExists if key is taken
	PutNew(ctx context.Context, key string, value []byte) error
	// List returns keys under prefix in lexicographic order, prefix included
	List(ctx context.Context, prefix string) ([]string, error)
}
