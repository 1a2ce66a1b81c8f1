package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"reloadradar/models"
	"reloadradar/utils"

	"github.com/shopspring/decimal"
)

const (
	// fixed width so keys sort by capture time
	stampLayout = "2006-01-02T15-04-05.000000000Z"
	errorStream = "errors/"
	maxSequence = 1000
)

var (
	snapshotHeader = []string{"name", "price", "url"}
	errorHeader    = []string{"name", "price", "url", "reason"}
)

// SnapshotCache keeps an append-only, replayable history of parsed listings
// per (product kind, supplier)
type SnapshotCache struct {
	blobs  BlobStore
	logger *utils.Logger
}

func NewSnapshotCache(blobs BlobStore, logger *utils.Logger) *SnapshotCache {
	return &SnapshotCache{blobs: blobs, logger: logger}
}

func streamPrefix(kind models.ProductKind, supplierID int64) string {
	return fmt.Sprintf("%s/%d/", kind, supplierID)
}

// Capture writes entries as a new record set and returns its key
func (c *SnapshotCache) Capture(ctx context.Context, kind models.ProductKind, supplierID int64, entries []models.ListingEntry, at time.Time) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, formatPrice(e.Price), e.URL})
	}
	key, err := c.put(ctx, streamPrefix(kind, supplierID), snapshotHeader, rows, at)
	if err != nil {
		return "", fmt.Errorf("failed to capture snapshot: %w", err)
	}
	c.logger.Info("Snapshot written to: %s (%d rows)", key, len(entries))
	return key, nil
}

// CaptureErrors writes unmatched entries to the error stream, which Replay never reads
func (c *SnapshotCache) CaptureErrors(ctx context.Context, kind models.ProductKind, supplierID int64, entries []models.UnmatchedEntry, at time.Time) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, formatPrice(e.Price), e.URL, e.Reason})
	}
	key, err := c.put(ctx, streamPrefix(kind, supplierID)+errorStream, errorHeader, rows, at)
	if err != nil {
		return "", fmt.Errorf("failed to capture unmatched entries: %w", err)
	}
	c.logger.Info("Unmatched entries written to: %s (%d rows)", key, len(entries))
	return key, nil
}

func (c *SnapshotCache) put(ctx context.Context, prefix string, header []string, rows [][]string, at time.Time) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write CSV rows: %w", err)
	}

	stamp := at.UTC().Format(stampLayout)
	for seq := 0; seq < maxSequence; seq++ {
		key := fmt.Sprintf("%s%s-%03d.csv", prefix, stamp, seq)
		err := c.blobs.PutNew(ctx, key, buf.Bytes())
		if errors.Is(err, ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return "", fmt.Errorf("too many captures at %s", stamp)
}

// Latest returns the newest capture for the key, ignoring the error stream
func (c *SnapshotCache) Latest(ctx context.Context, kind models.ProductKind, supplierID int64) (models.Snapshot, error) {
	prefix := streamPrefix(kind, supplierID)
	keys, err := c.blobs.List(ctx, prefix)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to list snapshots: %w", err)
	}

	latest := ""
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".csv") {
			continue
		}
		if rest > strings.TrimPrefix(latest, prefix) {
			latest = k
		}
	}
	if latest == "" {
		return models.Snapshot{}, fmt.Errorf("%s/%d: %w", kind, supplierID, ErrSnapshotNotFound)
	}

	data, err := c.blobs.Get(ctx, latest)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", latest, err)
	}
	entries, err := decodeEntries(bytes.NewReader(data))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", latest, err)
	}

	snap := models.Snapshot{Key: latest, Kind: kind, SupplierID: supplierID, Entries: entries}
	stamp := strings.TrimPrefix(latest, prefix)
	if i := strings.LastIndex(stamp, "-"); i > 0 {
		if t, err := time.Parse(stampLayout, stamp[:i]); err == nil {
			snap.CapturedAt = t
		}
	}
	return snap, nil
}

// Replay returns the entries of the newest capture verbatim
func (c *SnapshotCache) Replay(ctx context.Context, kind models.ProductKind, supplierID int64) ([]models.ListingEntry, error) {
	snap, err := c.Latest(ctx, kind, supplierID)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// formatPrice keeps the scale the price was parsed with, so "450.00" stays "450.00"
func formatPrice(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func decodeEntries(r io.Reader) ([]models.ListingEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(snapshotHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(snapshotHeader, ",") {
		return nil, fmt.Errorf("unexpected CSV header %v", header)
	}

	entries := []models.ListingEntry{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("bad price %q for '%s': %w", row[1], row[0], err)
		}
		entries = append(entries, models.ListingEntry{Name: row[0], Price: price, URL: row[2]})
	}
	return entries, nil
}
