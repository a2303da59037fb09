package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order workflow state. Only Pending and Rejected carry special
// semantics: a Pending order holds a stock reservation, and rejecting it
// releases that reservation exactly once.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
)

// Valid reports whether s is a known workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Buyer holds the customer details captured with an order.
type Buyer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order represents a purchase of a single product. ProductName is a snapshot
// taken at placement time and is immune to later catalog renames. The money
// fields are computed by the caller and stored as-is.
type Order struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Buyer       Buyer           `json:"buyer"`
	Qty         int             `json:"qty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	GST         decimal.Decimal `json:"gst"`
	Delivery    decimal.Decimal `json:"delivery"`
	Total       decimal.Decimal `json:"total"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MarshalJSON emits the money fields as JSON numbers, the form the storefront
// client expects. decimal's default marshaling produces quoted strings.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		Subtotal json.RawMessage `json:"subtotal"`
		GST      json.RawMessage `json:"gst"`
		Delivery json.RawMessage `json:"delivery"`
		Total    json.RawMessage `json:"total"`
	}{
		alias:    alias(o),
		Subtotal: json.RawMessage(o.Subtotal.String()),
		GST:      json.RawMessage(o.GST.String()),
		Delivery: json.RawMessage(o.Delivery.String()),
		Total:    json.RawMessage(o.Total.String()),
	})
}

// Store defines the persistence operations for orders. Place and Transition
// are atomic units: either every effect commits or none does.
type Store interface {
	// Place reserves o.Qty units of stock for o.ProductID and persists the
	// order in a single transaction. It fills in o.ProductName from the
	// product row it decremented. Returns catalog.ErrNotFound when the
	// product does not exist and ErrInsufficientStock when fewer than o.Qty
	// units remain.
	Place(ctx context.Context, o *Order) error

	// Transition sets the order status under a row lock, re-checking the
	// persisted status before any side effect. A Pending→Rejected transition
	// restores the order's quantity to product stock exactly once; every
	// other transition leaves stock untouched. Returns ErrNotFound when the
	// order does not exist.
	Transition(ctx context.Context, id string, target Status) (*Order, error)

	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)

	// GetByID returns a single order, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
}
