package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"reloadradar/models"

	"github.com/shopspring/decimal"
)

type pairKey struct {
	productID  int64
	supplierID int64
}

// MemoryStore is an in-process CatalogStore
type MemoryStore struct {
	mu            sync.RWMutex
	nextID        int64
	suppliers     map[int64]models.Supplier
	manufacturers map[int64]models.Manufacturer
	products      map[int64]models.Product
	links         map[int64]models.Link
	observations  map[pairKey][]models.PriceObservation
}

var _ CatalogStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		suppliers:     make(map[int64]models.Supplier),
		manufacturers: make(map[int64]models.Manufacturer),
		products:      make(map[int64]models.Product),
		links:         make(map[int64]models.Link),
		observations:  make(map[pairKey][]models.PriceObservation),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// AddSupplier registers a supplier; catalog administration lives outside the pipeline
func (s *MemoryStore) AddSupplier(name, adapter string) models.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup := models.Supplier{ID: s.id(), Name: name, Adapter: adapter}
	s.suppliers[sup.ID] = sup
	return sup
}

func (s *MemoryStore) AddManufacturer(name string) models.Manufacturer {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.Manufacturer{ID: s.id(), Name: name}
	s.manufacturers[m.ID] = m
	return m
}

func (s *MemoryStore) AddLink(l models.Link) models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.links[l.ID] = l
	return l
}

func (s *MemoryStore) Suppliers(_ context.Context) ([]models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		sup.Links = s.linksFor(models.TargetSupplier, sup.ID)
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Supplier(_ context.Context, id int64) (models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[id]
	if !ok {
		return models.Supplier{}, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}
	sup.Links = s.linksFor(models.TargetSupplier, sup.ID)
	return sup, nil
}

func (s *MemoryStore) Manufacturers(_ context.Context) ([]models.Manufacturer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Manufacturer, 0, len(s.manufacturers))
	for _, m := range s.manufacturers {
		for _, p := range s.products {
			if p.ManufacturerID == m.ID {
				m.Products = append(m.Products, p)
			}
		}
		sort.Slice(m.Products, func(i, j int) bool { return m.Products[i].ID < m.Products[j].ID })
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Products(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Links(_ context.Context) ([]models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) linksFor(kind models.TargetKind, id int64) []models.Link {
	var out []models.Link
	for _, l := range s.links {
		if l.TargetKind == kind && l.TargetID == id {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) LastPriceObservation(_ context.Context, productID, supplierID int64) (models.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := s.observations[pairKey{productID, supplierID}]
	if len(obs) == 0 {
		return models.PriceObservation{}, ErrNotFound
	}
	return obs[len(obs)-1], nil
}

func (s *MemoryStore) CreatePriceObservation(_ context.Context, obs models.PriceObservation, prevID int64) (models.PriceObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[obs.ProductID]; !ok {
		return models.PriceObservation{}, fmt.Errorf("product %d: %w", obs.ProductID, ErrNotFound)
	}
	if _, ok := s.suppliers[obs.SupplierID]; !ok {
		return models.PriceObservation{}, fmt.Errorf("supplier %d: %w", obs.SupplierID, ErrNotFound)
	}

	key := pairKey{obs.ProductID, obs.SupplierID}
	var latest int64
	if existing := s.observations[key]; len(existing) > 0 {
		latest = existing[len(existing)-1].ID
	}
	if latest != prevID {
		return models.PriceObservation{}, ErrRecordConflict
	}

	obs.ID = s.id()
	s.observations[key] = append(s.observations[key], obs)
	return obs, nil
}

// PriceObservations returns the full history for a pair, oldest first
func (s *MemoryStore) PriceObservations(productID, supplierID int64) []models.PriceObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PriceObservation(nil), s.observations[pairKey{productID, supplierID}]...)
}

func (s *MemoryStore) CreateProduct(_ context.Context, name string, weight decimal.Decimal, manufacturerID int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Product{}, fmt.Errorf("product name must not be empty")
	}
	if _, ok := s.manufacturers[manufacturerID]; !ok {
		return models.Product{}, fmt.Errorf("manufacturer %d: %w", manufacturerID, ErrNotFound)
	}
	for _, p := range s.products {
		if p.ManufacturerID == manufacturerID && strings.EqualFold(p.Name, name) {
			return models.Product{}, fmt.Errorf("product %q: %w", name, ErrAlreadyExists)
		}
	}

	p := models.Product{ID: s.id(), Name: name, Weight: weight, ManufacturerID: manufacturerID}
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
