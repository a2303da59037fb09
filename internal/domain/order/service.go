package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest holds the input for placing an order. The money fields
// are computed by the storefront client and stored verbatim.
type PlaceOrderRequest struct {
	ProductID string
	Buyer     Buyer
	Qty       int
	Subtotal  decimal.Decimal
	GST       decimal.Decimal
	Delivery  decimal.Decimal
	Total     decimal.Decimal
}

// Service encapsulates order placement and status workflow logic.
type Service struct {
	store Store
}

// NewService creates an order Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// PlaceOrder validates the request and atomically creates the order while
// decrementing product stock. On success the returned order reflects
// persisted state: status Pending, product name snapshotted, stock reduced
// by exactly the requested quantity.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, &ValidationError{Field: "productId", Reason: "is required"}
	}
	if req.Qty <= 0 {
		return nil, &ValidationError{Field: "qty", Reason: "must be greater than 0"}
	}
	if strings.TrimSpace(req.Buyer.Name) == "" {
		return nil, &ValidationError{Field: "buyer.name", Reason: "is required"}
	}
	if strings.TrimSpace(req.Buyer.Phone) == "" {
		return nil, &ValidationError{Field: "buyer.phone", Reason: "is required"}
	}
	if strings.TrimSpace(req.Buyer.Address) == "" {
		return nil, &ValidationError{Field: "buyer.address", Reason: "is required"}
	}
	for _, amount := range []struct {
		field string
		value decimal.Decimal
	}{
		{"subtotal", req.Subtotal},
		{"gst", req.GST},
		{"delivery", req.Delivery},
		{"total", req.Total},
	} {
		if amount.value.IsNegative() {
			return nil, &ValidationError{Field: amount.field, Reason: "must not be negative"}
		}
	}

	now := time.Now().UTC()
	o := &Order{
		ID:        uuid.New().String(),
		ProductID: req.ProductID,
		Buyer:     req.Buyer,
		Qty:       req.Qty,
		Subtotal:  req.Subtotal,
		GST:       req.GST,
		Delivery:  req.Delivery,
		Total:     req.Total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Place(ctx, o); err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	return o, nil
}

// UpdateStatus transitions an order to the target status. The store performs
// the compare-and-swap against the persisted status and the one-shot stock
// refund for Pending→Rejected.
func (s *Service) UpdateStatus(ctx context.Context, id string, target Status) (*Order, error) {
	if !target.Valid() {
		return nil, &InvalidStatusError{Status: target}
	}
	o, err := s.store.Transition(ctx, id, target)
	if err != nil {
		return nil, errors.Wrapf(err, "transition order %s", id)
	}
	return o, nil
}

// ListOrders returns all orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// GetOrder returns a single order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return o, nil
}
