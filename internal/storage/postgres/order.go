package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/giftnest/storefront/internal/domain/catalog"
	"github.com/giftnest/storefront/internal/domain/order"
)

const (
	// reserveStockSQL is the conditional decrement: it matches only when
	// enough stock remains, so two concurrent placements can never drive
	// stock negative. The product name comes back with the same statement
	// for the order's snapshot.
	reserveStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING name`

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	restoreStockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders
		(id, product_id, product_name, buyer, qty, subtotal, gst, delivery, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	lockOrderSQL = `SELECT product_id, qty, status FROM orders WHERE id = $1 FOR UPDATE`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + orderColumns

	orderColumns = `id, product_id, product_name, buyer, qty, subtotal, gst, delivery, total, status, created_at, updated_at`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Stock reservation
// and status transitions run inside transactions so each operation is all or
// nothing.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Place atomically decrements product stock and inserts the order. The
// conditional UPDATE either reserves the full quantity or matches nothing;
// a non-match is disambiguated into not-found vs insufficient-stock inside
// the same transaction.
func (s *OrderStore) Place(ctx context.Context, o *order.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin place order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var name string
	err = tx.QueryRow(ctx, reserveStockSQL, o.ProductID, o.Qty).Scan(&name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("reserving stock for product %q: %w", o.ProductID, err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, productExistsSQL, o.ProductID).Scan(&exists); err != nil {
			return fmt.Errorf("checking product %q: %w", o.ProductID, err)
		}
		if !exists {
			return catalog.ErrNotFound
		}
		return order.ErrInsufficientStock
	}
	o.ProductName = name

	buyerJSON, err := json.Marshal(o.Buyer)
	if err != nil {
		return fmt.Errorf("marshaling buyer: %w", err)
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.ProductID, o.ProductName, buyerJSON, o.Qty,
		o.Subtotal, o.GST, o.Delivery, o.Total,
		string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit place order: %w", err)
	}
	return nil
}

// Transition locks the order row, re-checks the persisted status, applies the
// one-shot stock refund for Pending→Rejected, and updates the status. The row
// lock serializes concurrent transitions on the same order, so the refund can
// fire at most once.
func (s *OrderStore) Transition(ctx context.Context, id string, target order.Status) (*order.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		productID string
		qty       int
		prev      string
	)
	err = tx.QueryRow(ctx, lockOrderSQL, id).Scan(&productID, &qty, &prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("locking order %q: %w", id, err)
	}

	if order.Status(prev) == order.StatusPending && target == order.StatusRejected {
		ct, err := tx.Exec(ctx, restoreStockSQL, productID, qty)
		if err != nil {
			return nil, fmt.Errorf("restoring stock for product %q: %w", productID, err)
		}
		if ct.RowsAffected() == 0 {
			// The product was deleted after the order was placed. The
			// transition still succeeds; record the dangling reference.
			zctx.From(ctx).Warn("stock refund skipped: product missing",
				zap.String("order_id", id),
				zap.String("product_id", productID),
				zap.Int("qty", qty),
			)
		}
	}

	// Same clock as placement (Go-side UTC), so created_at and updated_at
	// are comparable.
	rows, err := tx.Query(ctx, updateOrderStatusSQL, id, string(target), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("updating order %q status: %w", id, err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("updating order %q status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return &updated, nil
}

// List returns all orders, newest first.
func (s *OrderStore) List(ctx context.Context) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order by its identifier.
func (s *OrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := s.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		buyer  []byte
		status string
	)
	err := row.Scan(
		&o.ID, &o.ProductID, &o.ProductName, &buyer, &o.Qty,
		&o.Subtotal, &o.GST, &o.Delivery, &o.Total,
		&status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(buyer, &o.Buyer); err != nil {
		return o, fmt.Errorf("unmarshaling buyer: %w", err)
	}
	o.Status = order.Status(status)
	return o, nil
}
