package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors surfaced by the order store and service.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInsufficientStock is returned when the requested quantity exceeds
	// the stock available at the placement instant. The conditional stock
	// update guarantees no partial effect occurred.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError indicates a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s %s", e.Field, e.Reason)
}

// InvalidStatusError indicates an unknown target status in a transition.
type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Status)
}
