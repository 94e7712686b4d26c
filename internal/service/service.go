// Package service provides the implementation of catalog and stock business logic.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockroom/catalog/internal/store"
)

// ProductService defines the methods for managing the product catalog.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByCategory returns products whose category equals the argument, ignoring case.
	FindByCategory(ctx context.Context, category string) ([]ProductDto, error)

	// FindByPriceRangeAndCategory returns products in [minPrice, maxPrice] inclusive
	// whose category matches exactly.
	FindByPriceRangeAndCategory(ctx context.Context, category string, minPrice, maxPrice int64) ([]ProductDto, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces all mutable fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, product ProductCreateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every product from the catalog.
	DeleteAll(ctx context.Context) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating or replacing a product.
type ProductCreateDto struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=100"`
	Quantity int32  `json:"quantity" validate:"min=0"`
	Price    int64  `json:"price"    validate:"min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int32  `json:"quantity"`
	Price    int64  `json:"price"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindByCategory retrieves products matching the category, ignoring case.
func (s *Service) FindByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	products, err := s.repository.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by category %q: %w", category, err)
	}
	return toDtos(products), nil
}

// FindByPriceRangeAndCategory retrieves products within the inclusive price range
// whose category matches exactly.
func (s *Service) FindByPriceRangeAndCategory(ctx context.Context, category string, minPrice, maxPrice int64) ([]ProductDto, error) {
	products, err := s.repository.FindByPriceRangeAndCategory(ctx, category, minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by price range and category %q: %w", category, err)
	}
	return toDtos(products), nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns an error if the product cannot be created.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, product.Name, product.Category, product.Quantity, product.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(p), nil
}

// Update replaces all mutable fields of an existing product and returns the updated product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductCreateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, product.Name, product.Category, product.Quantity, product.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id)
}

// DeleteAll deletes every product from the catalog.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repository.DeleteAll(ctx)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID.String(),
		Name:     product.Name,
		Category: product.Category,
		Quantity: product.Quantity,
		Price:    product.Price,
	}
}

func toDtos(products []store.Product) []ProductDto {
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs
}
