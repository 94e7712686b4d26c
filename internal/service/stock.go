package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	cerrors "github.com/stockroom/catalog/internal/errors"
	"github.com/stockroom/catalog/internal/store"
)

// Outcome is the business result of a stock operation. Hard failures
// (missing product, exhausted retries, bad input) are reported as errors instead,
// so callers cannot mistake a legitimate "insufficient stock" answer for a fault.
type Outcome int

const (
	// OutcomeReserved means the requested quantity was deducted from stock.
	OutcomeReserved Outcome = iota + 1
	// OutcomeRestored means the requested quantity was added back to stock.
	OutcomeRestored
	// OutcomeInsufficientStock means the reservation exceeded the available quantity
	// and no state was changed.
	OutcomeInsufficientStock
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeReserved:
		return "reserved"
	case OutcomeRestored:
		return "restored"
	case OutcomeInsufficientStock:
		return "insufficient stock"
	default:
		return "unknown"
	}
}

// defaultMaxAttempts bounds the compare-and-swap retry loop when no budget is configured.
const defaultMaxAttempts = 5

// errShortStock marks an availability check failure inside the retry loop.
// It never escapes adjust; callers see OutcomeInsufficientStock instead.
var errShortStock = errors.New("short stock")

// StockService defines the stock-mutating operations of the catalog.
type StockService interface {
	// Reserve deducts quantity from the product's stock if enough is available.
	// Returns OutcomeInsufficientStock without mutating when stock is short.
	// Returns ErrProductNotFound, ErrInvalidQuantity or ErrContention on failure.
	Reserve(ctx context.Context, id uuid.UUID, quantity int32) (Outcome, error)

	// Restore adds quantity back to the product's stock.
	// Returns ErrProductNotFound, ErrInvalidQuantity or ErrContention on failure.
	Restore(ctx context.Context, id uuid.UUID, quantity int32) (Outcome, error)
}

// StockManager implements StockService on top of a ProductStore.
// It holds no per-product state; every call re-reads current stock and relies on
// the store's CompareAndSwapQuantity as the sole synchronization point, so
// concurrent callers targeting unrelated products never block each other.
type StockManager struct {
	repository  store.ProductStore
	maxAttempts int
}

// NewStockManager creates a StockManager with the given retry budget.
// A non-positive maxAttempts falls back to the default.
func NewStockManager(repo store.ProductStore, maxAttempts int) *StockManager {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &StockManager{
		repository:  repo,
		maxAttempts: maxAttempts,
	}
}

// Reserve deducts quantity from the product's stock using a bounded
// read-check-swap loop. The availability check always runs against the freshly
// read record, so a racing writer can never cause an oversell: the swap only
// commits if the quantity is still exactly what the check saw.
func (m *StockManager) Reserve(ctx context.Context, id uuid.UUID, quantity int32) (Outcome, error) {
	return m.adjust(ctx, id, quantity, OutcomeReserved, func(current int32) (int32, error) {
		if current < quantity {
			return 0, errShortStock
		}
		return current - quantity, nil
	})
}

// Restore adds quantity back to the product's stock. There is no business upper
// bound: restoring can push the quantity above any previously reserved amount.
// An addition that would overflow the stored quantity is rejected as invalid input.
// Restoring stock for a nonexistent product is an error, not a no-op.
func (m *StockManager) Restore(ctx context.Context, id uuid.UUID, quantity int32) (Outcome, error) {
	return m.adjust(ctx, id, quantity, OutcomeRestored, func(current int32) (int32, error) {
		if current > math.MaxInt32-quantity {
			return 0, fmt.Errorf("restoring %d on top of %d exceeds the maximum stock level: %w",
				quantity, current, cerrors.ErrInvalidQuantity)
		}
		return current + quantity, nil
	})
}

// adjust runs the shared read-check-swap retry loop. next computes the new
// quantity from the current one; returning errShortStock yields
// OutcomeInsufficientStock, any other error aborts the loop.
func (m *StockManager) adjust(ctx context.Context, id uuid.UUID, quantity int32, success Outcome, next func(current int32) (int32, error)) (Outcome, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("quantity must not be negative, got %d: %w", quantity, cerrors.ErrInvalidQuantity)
	}

	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("stock operation aborted after %d attempts: %w: %w", attempt, cerrors.ErrContention, err)
		}

		product, err := m.repository.FindByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch product %s for stock operation: %w", id, err)
		}

		// Zero-quantity operations validate existence but never mutate state.
		if quantity == 0 {
			return success, nil
		}

		newQuantity, err := next(product.Quantity)
		if errors.Is(err, errShortStock) {
			return OutcomeInsufficientStock, nil
		}
		if err != nil {
			return 0, err
		}

		swapped, err := m.repository.CompareAndSwapQuantity(ctx, id, product.Quantity, newQuantity)
		if err != nil {
			return 0, fmt.Errorf("failed to swap quantity for product %s: %w", id, err)
		}
		if swapped {
			return success, nil
		}
		// A concurrent mutation raced ahead; re-read and retry.
	}

	return 0, fmt.Errorf("stock operation on product %s exhausted %d attempts: %w", id, m.maxAttempts, cerrors.ErrContention)
}
