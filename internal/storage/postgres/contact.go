package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftnest/storefront/internal/domain/contact"
)

const (
	insertMessageSQL = `INSERT INTO contact_messages (id, name, phone, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listMessagesSQL = `SELECT id, name, phone, email, message, created_at
		FROM contact_messages ORDER BY created_at DESC`
)

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create persists a new contact message.
func (r *ContactRepository) Create(ctx context.Context, m *contact.Message) error {
	_, err := r.pool.Exec(ctx, insertMessageSQL,
		m.ID, m.Name, m.Phone, m.Email, m.Body, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating contact message %q: %w", m.ID, err)
	}
	return nil
}

// List returns all contact messages, newest first.
func (r *ContactRepository) List(ctx context.Context) ([]contact.Message, error) {
	rows, err := r.pool.Query(ctx, listMessagesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (contact.Message, error) {
		var m contact.Message
		err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Email, &m.Body, &m.CreatedAt)
		return m, err
	})
}
