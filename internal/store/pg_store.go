package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	cerrors "github.com/stockroom/catalog/internal/errors"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = "id, name, category, quantity, price"

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all available products ordered by ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// FindByCategory retrieves products whose category equals the argument, ignoring case.
func (p *PgStore) FindByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE LOWER(category) = LOWER($1) ORDER BY id", category)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// FindByPriceRangeAndCategory retrieves products within the inclusive price range
// whose category equals the argument exactly.
func (p *PgStore) FindByPriceRangeAndCategory(ctx context.Context, category string, minPrice, maxPrice int64) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE category = $1 AND price >= $2 AND price <= $3 ORDER BY id",
		category, minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by price range and category: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, name, category string, quantity int32, price int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"INSERT INTO products (name, category, quantity, price) VALUES ($1, $2, $3, $4) RETURNING "+productColumns,
		name, category, quantity, price)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces all mutable fields of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, name, category string, quantity int32, price int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"UPDATE products SET name = $2, category = $3, quantity = $4, price = $5 WHERE id = $1 RETURNING "+productColumns,
		id, name, category, quantity, price)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// DeleteAll unconditionally removes every product.
func (p *PgStore) DeleteAll(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}

// CompareAndSwapQuantity persists newQuantity only if the stored quantity still equals
// expected. The affected-row count of the conditional UPDATE is the atomicity check:
// zero rows means either a concurrent writer changed the quantity or the product is gone.
func (p *PgStore) CompareAndSwapQuantity(ctx context.Context, id uuid.UUID, expected, newQuantity int32) (bool, error) {
	tag, err := p.db.Exec(ctx,
		"UPDATE products SET quantity = $3 WHERE id = $1 AND quantity = $2",
		id, expected, newQuantity)
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-swap quantity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Quantity, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}
