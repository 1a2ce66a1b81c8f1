package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reloadradar/models"
	"reloadradar/utils"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Postgres error code for unique_violation
const uniqueViolation = "23505"

// PostgresStore is the CatalogStore backed by the catalog database
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

var _ CatalogStore = (*PostgresStore)(nil)

// NewPostgresStore opens the database and pings it
func NewPostgresStore(connStr string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresStore{db: db, logger: logger}, nil
}

// CreateTables creates the catalog tables if they don't exist, with indexes
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS suppliers (
		id      BIGSERIAL PRIMARY KEY,
		name    VARCHAR(128) NOT NULL,
		adapter VARCHAR(64)  NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS manufacturers (
		id   BIGSERIAL PRIMARY KEY,
		name VARCHAR(128) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS propellants (
		id              BIGSERIAL PRIMARY KEY,
		name            VARCHAR(18)    NOT NULL,
		weight          NUMERIC(10,2)  NOT NULL DEFAULT 0,
		manufacturer_id BIGINT         NOT NULL REFERENCES manufacturers (id) ON DELETE RESTRICT,
		UNIQUE (manufacturer_id, name)
	);

	CREATE TABLE IF NOT EXISTS links (
		id          BIGSERIAL PRIMARY KEY,
		link_type   VARCHAR(32) NOT NULL,
		link_url    TEXT        NOT NULL,
		target_kind VARCHAR(32) NOT NULL,
		target_id   BIGINT      NOT NULL
	);

	CREATE TABLE IF NOT EXISTS price_observations (
		id           BIGSERIAL PRIMARY KEY,
		product_id   BIGINT       NOT NULL REFERENCES propellants (id) ON DELETE RESTRICT,
		supplier_id  BIGINT       NOT NULL REFERENCES suppliers (id) ON DELETE RESTRICT,
		price        NUMERIC(8,3) NOT NULL,
		price_url    TEXT         NOT NULL,
		retrieved_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_links_target       ON links (target_kind, target_id);
	CREATE INDEX IF NOT EXISTS idx_price_obs_pair     ON price_observations (product_id, supplier_id, id DESC);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.logger.Info("Catalog tables are ready")
	return nil
}

func (s *PostgresStore) Suppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, adapter FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var out []models.Supplier
	for rows.Next() {
		var sup models.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Adapter); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		out = append(out, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := s.Links(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		for _, l := range links {
			if l.TargetKind == models.TargetSupplier && l.TargetID == out[i].ID {
				out[i].Links = append(out[i].Links, l)
			}
		}
	}
	return out, nil
}

func (s *PostgresStore) Supplier(ctx context.Context, id int64) (models.Supplier, error) {
	var sup models.Supplier
	err := s.db.QueryRowContext(ctx, `SELECT id, name, adapter FROM suppliers WHERE id = $1`, id).
		Scan(&sup.ID, &sup.Name, &sup.Adapter)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Supplier{}, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Supplier{}, fmt.Errorf("failed to query supplier %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, link_type, link_url, target_kind, target_id
		FROM links WHERE target_kind = $1 AND target_id = $2 ORDER BY id`,
		string(models.TargetSupplier), id)
	if err != nil {
		return models.Supplier{}, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()
	sup.Links, err = scanLinks(rows)
	return sup, err
}

func (s *PostgresStore) Manufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM manufacturers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query manufacturers: %w", err)
	}
	defer rows.Close()

	var out []models.Manufacturer
	index := map[int64]int{}
	for rows.Next() {
		var m models.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		index[m.ID] = len(out)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if i, ok := index[p.ManufacturerID]; ok {
			out[i].Products = append(out[i].Products, p)
		}
	}
	return out, nil
}

func (s *PostgresStore) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, weight, manufacturer_id FROM propellants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query propellants: %w", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Weight, &p.ManufacturerID); err != nil {
			return nil, fmt.Errorf("failed to scan propellant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Links(ctx context.Context) ([]models.Link, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, link_type, link_url, target_kind, target_id FROM links ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

func scanLinks(rows *sql.Rows) ([]models.Link, error) {
	var out []models.Link
	for rows.Next() {
		var l models.Link
		var linkType, targetKind string
		if err := rows.Scan(&l.ID, &linkType, &l.URL, &targetKind, &l.TargetID); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		l.Type = models.ProductKind(strings.ToLower(linkType))
		l.TargetKind = models.TargetKind(targetKind)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LastPriceObservation(ctx context.Context, productID, supplierID int64) (models.PriceObservation, error) {
	return lastObservation(ctx, s.db, productID, supplierID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func lastObservation(ctx context.Context, q queryRower, productID, supplierID int64) (models.PriceObservation, error) {
	var o models.PriceObservation
	err := q.QueryRowContext(ctx, `
		SELECT id, product_id, supplier_id, price, price_url, retrieved_at
		FROM price_observations
		WHERE product_id = $1 AND supplier_id = $2
		ORDER BY id DESC
		LIMIT 1`, productID, supplierID).
		Scan(&o.ID, &o.ProductID, &o.SupplierID, &o.Price, &o.SourceURL, &o.RetrievedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceObservation{}, ErrNotFound
	}
	if err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to query last price: %w", err)
	}
	return o, nil
}

// CreatePriceObservation serializes writers for the pair with a transaction-scoped
// advisory lock, then inserts only if the newest row is still prevID
func (s *PostgresStore) CreatePriceObservation(ctx context.Context, obs models.PriceObservation, prevID int64) (created models.PriceObservation, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, int32(obs.ProductID), int32(obs.SupplierID)); err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to lock price pair: %w", err)
	}

	latest, err := lastObservation(ctx, tx, obs.ProductID, obs.SupplierID)
	var latestID int64
	switch {
	case errors.Is(err, ErrNotFound):
		err = nil
	case err != nil:
		return models.PriceObservation{}, err
	default:
		latestID = latest.ID
	}
	if latestID != prevID {
		err = ErrRecordConflict
		return models.PriceObservation{}, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO price_observations (product_id, supplier_id, price, price_url, retrieved_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		obs.ProductID, obs.SupplierID, obs.Price, obs.SourceURL, obs.RetrievedAt).Scan(&obs.ID)
	if err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to insert price: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.PriceObservation{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return obs, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, name string, weight decimal.Decimal, manufacturerID int64) (models.Product, error) {
	p := models.Product{Name: strings.TrimSpace(name), Weight: weight, ManufacturerID: manufacturerID}
	if p.Name == "" {
		return models.Product{}, fmt.Errorf("product name must not be empty")
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO propellants (name, weight, manufacturer_id)
		VALUES ($1, $2, $3)
		RETURNING id`, p.Name, p.Weight, p.ManufacturerID).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Product{}, fmt.Errorf("product %q: %w", p.Name, ErrAlreadyExists)
		}
		return models.Product{}, fmt.Errorf("failed to insert propellant: %w", err)
	}
	s.logger.Info("Created propellant '%s' (id %d)", p.Name, p.ID)
	return p, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
