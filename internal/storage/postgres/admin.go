package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftnest/storefront/internal/domain/auth"
)

const (
	getAdminByUsernameSQL = `SELECT id, username, password_hash, avatar_path, created_at
		FROM admin_users WHERE username = $1`

	insertAdminSQL = `INSERT INTO admin_users (id, username, password_hash, avatar_path, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	countAdminsSQL = `SELECT COUNT(*) FROM admin_users`
)

var _ auth.Repository = (*AdminRepository)(nil)

// AdminRepository provides admin credential lookups backed by PostgreSQL.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns an AdminRepository that uses the given pool.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// FindByUsername looks up an admin credential by username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*auth.Admin, error) {
	var a auth.Admin
	err := r.pool.QueryRow(ctx, getAdminByUsernameSQL, username).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.AvatarPath, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("finding admin %q: %w", username, err)
	}
	return &a, nil
}

// Create inserts a new admin credential.
func (r *AdminRepository) Create(ctx context.Context, a *auth.Admin) error {
	_, err := r.pool.Exec(ctx, insertAdminSQL,
		a.ID, a.Username, a.PasswordHash, a.AvatarPath, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating admin %q: %w", a.Username, err)
	}
	return nil
}

// Count returns the number of stored admin credentials.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countAdminsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}
