package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrInvalidCredentials is returned for a wrong username or password. The two
// cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotFound is returned by the repository when no admin matches.
var ErrNotFound = errors.New("admin not found")

// Admin is a stored administrator credential. PasswordHash is a bcrypt hash;
// the plaintext never leaves the login request.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	AvatarPath   string
	CreatedAt    time.Time
}

// Repository defines persistence for admin credentials. Credentials live in
// their own table so they survive process restarts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	// Create inserts a new admin. Used by the startup bootstrap when the
	// table is empty.
	Create(ctx context.Context, a *Admin) error
	Count(ctx context.Context) (int, error)
}
