package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductKind names a catalog entity kind a Link produces entries for
type ProductKind string

const (
	KindPropellant ProductKind = "propellant"
)

// TargetKind identifies the owner of a Link
type TargetKind string

const (
	TargetSupplier     TargetKind = "supplier"
	TargetManufacturer TargetKind = "manufacturer"
)

// Link points at one owner's listing page for one product kind
type Link struct {
	ID         int64
	TargetKind TargetKind
	TargetID   int64
	URL        string
	Type       ProductKind
}

// Supplier is a retailer whose listing pages are scraped.
// Adapter selects the listing adapter variant used for its links.
type Supplier struct {
	ID      int64
	Name    string
	Adapter string
	Links   []Link
}

type Manufacturer struct {
	ID       int64
	Name     string
	Products []Product
}

// Product is a catalog propellant; it always belongs to a manufacturer
type Product struct {
	ID             int64
	Name           string
	Weight         decimal.Decimal
	ManufacturerID int64
}

// PriceObservation records one price change for a (product, supplier) pair.
// Observations are never updated or deleted.
type PriceObservation struct {
	ID          int64
	ProductID   int64
	SupplierID  int64
	Price       decimal.Decimal
	SourceURL   string
	RetrievedAt time.Time
}
