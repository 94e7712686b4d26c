// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when the referenced product ID does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrContention is returned when the compare-and-swap retry budget is exhausted
	// under concurrent writes to the same product.
	ErrContention = errors.New("stock update contention")

	// ErrInvalidQuantity is returned when a stock operation receives a negative quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
