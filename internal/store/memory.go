package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	cerrors "github.com/stockroom/catalog/internal/errors"
)

// inMemory implements ProductStore using an in-memory map.
// The mutex spans every read-modify-write, so CompareAndSwapQuantity is atomic
// with respect to all other mutations.
type inMemory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
}

// NewInMemoryStore creates a new in-memory instance of ProductStore.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[uuid.UUID]Product),
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products ordered by ID.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(Product) bool { return true }), nil
}

// FindByCategory retrieves products whose category matches, ignoring case.
func (s *inMemory) FindByCategory(_ context.Context, category string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(p Product) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

// FindByPriceRangeAndCategory retrieves products in the inclusive price range
// with an exact category match.
func (s *inMemory) FindByPriceRangeAndCategory(_ context.Context, category string, minPrice, maxPrice int64) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(p Product) bool {
		return p.Category == category && p.Price >= minPrice && p.Price <= maxPrice
	}), nil
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, name, category string, quantity int32, price int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Quantity: quantity,
		Price:    price,
	}
	s.products[product.ID] = product

	return &product, nil
}

// Update replaces all mutable fields of an existing product.
func (s *inMemory) Update(_ context.Context, id uuid.UUID, name, category string, quantity int32, price int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return nil, cerrors.ErrProductNotFound
	}
	product := Product{
		ID:       id,
		Name:     name,
		Category: category,
		Quantity: quantity,
		Price:    price,
	}
	s.products[id] = product

	return &product, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return cerrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// DeleteAll empties the store.
func (s *inMemory) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[uuid.UUID]Product)
	return nil
}

// CompareAndSwapQuantity swaps the quantity only if it still equals expected.
// Missing products and stale expectations both report false without mutating.
func (s *inMemory) CompareAndSwapQuantity(_ context.Context, id uuid.UUID, expected, newQuantity int32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.Quantity != expected {
		return false, nil
	}
	p.Quantity = newQuantity
	s.products[id] = p
	return true, nil
}

// collect returns all products matching the filter, ordered by ID for stable snapshots.
// Callers must hold at least a read lock.
func (s *inMemory) collect(match func(Product) bool) []Product {
	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if match(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.Compare(list[i].ID.String(), list[j].ID.String()) < 0
	})
	return list
}
