package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingEntry is one scraped (name, price, url) tuple before matching
type ListingEntry struct {
	Name  string
	Price decimal.Decimal
	URL   string
}

// UnmatchedEntry is a listing entry written to the error stream for manual triage
type UnmatchedEntry struct {
	ListingEntry
	Reason string
}

// Snapshot is a persisted capture of one fetch's parsed listing
type Snapshot struct {
	Key        string
	Kind       ProductKind
	SupplierID int64
	CapturedAt time.Time
	Entries    []ListingEntry
}
