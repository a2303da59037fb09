package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// MarshalJSON emits price and discount as JSON numbers, the form the
// storefront client expects. decimal's default marshaling produces quoted
// strings.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price    json.RawMessage `json:"price"`
		Discount json.RawMessage `json:"discount"`
	}{
		alias:    alias(p),
		Price:    json.RawMessage(p.Price.String()),
		Discount: json.RawMessage(p.Discount.String()),
	})
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// List returns all products, newest first.
	List(ctx context.Context) ([]Product, error)
	// GetByID returns a single product, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)
	// Create persists a new product.
	Create(ctx context.Context, p *Product) error
}

// ValidationError describes a rejected product field. Parsing is explicit:
// a bad field is an error, never silently coerced to a zero value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid product: " + e.Field + " " + e.Reason
}

// NewProductInput holds the admin-supplied fields for product creation. ID is
// optional; seeding passes a stable ID so repeated runs upsert instead of
// duplicating, and an empty ID gets a fresh UUID.
type NewProductInput struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Category    string
	Tags        []string
	Images      []string
}

// NewProduct validates the input and builds a Product ready for persistence.
func NewProduct(in NewProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if in.Discount.IsNegative() {
		return nil, &ValidationError{Field: "discount", Reason: "must not be negative"}
	}
	if in.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Reason: "must not be negative"}
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}

	return &Product{
		ID:          id,
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Discount:    in.Discount,
		Stock:       in.Stock,
		Category:    in.Category,
		Tags:        tags,
		Images:      images,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
