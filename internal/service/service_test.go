package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/catalog/internal/store"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.Product
	product  store.Product
	error    error
}

// Simulate finding a product by ID
func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Product, error) {
	return &m.product, m.error
}

// Simulate finding all products
func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

// Simulate finding products by category
func (m *mockProductStore) FindByCategory(_ context.Context, _ string) ([]store.Product, error) {
	return m.products, m.error
}

// Simulate filtering products by price range and category
func (m *mockProductStore) FindByPriceRangeAndCategory(_ context.Context, _ string, _, _ int64) ([]store.Product, error) {
	return m.products, m.error
}

// Simulate creating a product
func (m *mockProductStore) Create(_ context.Context, _, _ string, _ int32, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

// Simulate updating a product
func (m *mockProductStore) Update(_ context.Context, _ uuid.UUID, _, _ string, _ int32, _ int64) (*store.Product, error) {
	return &m.product, m.error
}

// Simulate deleting a product by ID
func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

// Simulate deleting all products
func (m *mockProductStore) DeleteAll(_ context.Context) error {
	return m.error
}

// Simulate a compare-and-swap of the quantity
func (m *mockProductStore) CompareAndSwapQuantity(_ context.Context, _ uuid.UUID, _, _ int32) (bool, error) {
	return m.error == nil, m.error
}

func Test_ProductService_FindByID(t *testing.T) {
	ErrProductNotFound := errors.New("product not found")
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		productID   uuid.UUID
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product found",
			mockStore: &mockProductStore{
				product: store.Product{ID: mockID, Name: "Toy", Category: "Toys"},
				error:   nil,
			},
			productID:   mockID,
			expected:    &ProductDto{ID: mockID.String(), Name: "Toy", Category: "Toys"},
			expectError: nil,
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: ErrProductNotFound,
			},
			productID:   mockID,
			expected:    nil,
			expectError: ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			found, err := service.FindByID(context.Background(), tc.productID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    []ProductDto
		expectError error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{
				products: []store.Product{{ID: mockID, Name: "Toy", Category: "Toys", Quantity: 3, Price: 100}},
				error:    nil,
			},
			expected:    []ProductDto{{ID: mockID.String(), Name: "Toy", Category: "Toys", Quantity: 3, Price: 100}},
			expectError: nil,
		},
		{
			name: "Success - no products",
			mockStore: &mockProductStore{
				products: []store.Product{},
				error:    nil,
			},
			expected:    []ProductDto{},
			expectError: nil,
		},
		{
			name: "Error - store error",
			mockStore: &mockProductStore{
				error: ErrStoreError,
			},
			expected:    nil,
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			found, err := service.FindAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindByCategory(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	// given
	service := NewService(&mockProductStore{
		products: []store.Product{{ID: mockID, Name: "Toy", Category: "Toys"}},
	})
	// when
	found, err := service.FindByCategory(context.Background(), "toys")
	// then
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "Toys", found[0].Category)
}

func Test_ProductService_Create(t *testing.T) {
	ErrStoreError := errors.New("store error")
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		input       ProductCreateDto
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product created",
			mockStore: &mockProductStore{
				product: store.Product{ID: mockID, Name: "Toy", Category: "Toys", Quantity: 10, Price: 1000},
			},
			input:    ProductCreateDto{Name: "Toy", Category: "Toys", Quantity: 10, Price: 1000},
			expected: &ProductDto{ID: mockID.String(), Name: "Toy", Category: "Toys", Quantity: 10, Price: 1000},
		},
		{
			name: "Error - store error",
			mockStore: &mockProductStore{
				error: ErrStoreError,
			},
			input:       ProductCreateDto{Name: "Toy", Category: "Toys"},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			created, err := service.Create(context.Background(), tc.input)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
		})
	}
}

func Test_ProductService_Update(t *testing.T) {
	ErrProductNotFound := errors.New("product not found")
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name: "Success - product updated",
			mockStore: &mockProductStore{
				product: store.Product{ID: mockID, Name: "Updated", Category: "Toys", Quantity: 5, Price: 500},
			},
			expected: &ProductDto{ID: mockID.String(), Name: "Updated", Category: "Toys", Quantity: 5, Price: 500},
		},
		{
			name: "Error - product not found",
			mockStore: &mockProductStore{
				error: ErrProductNotFound,
			},
			expectError: ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			updated, err := service.Update(context.Background(), mockID, ProductCreateDto{Name: "Updated", Category: "Toys", Quantity: 5, Price: 500})
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
		})
	}
}

func Test_ProductService_DeleteByID(t *testing.T) {
	ErrProductNotFound := errors.New("product not found")
	// given
	service := NewService(&mockProductStore{error: ErrProductNotFound})
	// when
	err := service.DeleteByID(context.Background(), uuid.New())
	// then
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func Test_ProductService_DeleteAll(t *testing.T) {
	// given
	service := NewService(&mockProductStore{})
	// when
	err := service.DeleteAll(context.Background())
	// then
	require.NoError(t, err)
}
