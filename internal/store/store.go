// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Product represents a product record as persisted by the store.
type Product struct {
	ID       uuid.UUID
	Name     string
	Category string
	Quantity int32
	Price    int64 // Price in the smallest currency unit
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all available products in a stable order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByCategory returns products whose category equals the argument, ignoring case.
	FindByCategory(ctx context.Context, category string) ([]Product, error)

	// FindByPriceRangeAndCategory returns products whose category equals the argument
	// (case-sensitive) and whose price lies in [minPrice, maxPrice] inclusive.
	FindByPriceRangeAndCategory(ctx context.Context, category string, minPrice, maxPrice int64) ([]Product, error)

	// Create adds a new product to the system and assigns it a fresh ID.
	// Returns an error if the product cannot be created.
	Create(ctx context.Context, name, category string, quantity int32, price int64) (*Product, error)

	// Update replaces all mutable fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, name, category string, quantity int32, price int64) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteAll unconditionally empties the store.
	DeleteAll(ctx context.Context) error

	// CompareAndSwapQuantity persists newQuantity only if the stored quantity still
	// equals expected at the moment of the write. Returns false without mutating
	// when the stored quantity has changed or the product no longer exists; the
	// caller is expected to re-read and retry.
	CompareAndSwapQuantity(ctx context.Context, id uuid.UUID, expected, newQuantity int32) (bool, error)
}
