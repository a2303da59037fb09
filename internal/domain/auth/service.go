package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an issued admin session token stays valid.
const TokenTTL = 12 * time.Hour

// Claims are the JWT claims embedded in an admin session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies admin session tokens.
type Service struct {
	admins Repository
	secret []byte
	now    func() time.Time
}

// NewService creates an auth Service signing tokens with the given secret.
func NewService(admins Repository, secret []byte) *Service {
	return &Service{
		admins: admins,
		secret: secret,
		now:    time.Now,
	}
}

// Login verifies the credentials and returns a signed session token plus the
// matched admin. bcrypt comparison runs even when the username is unknown so
// the failure timing does not reveal which part was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Admin, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		// Burn a comparison against a fixed hash to equalize timing.
		_ = bcrypt.CompareHashAndPassword(phantomHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign token")
	}
	return token, admin, nil
}

// VerifyToken parses and validates a session token, returning its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// EnsureDefaultAdmin creates the initial admin credential when the table is
// empty. It replaces the original deployment's in-memory admin list: the
// credential persists across restarts and password changes stick.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count admins")
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	return s.admins.Create(ctx, &Admin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		AvatarPath:   "/default-dp.jpg",
		CreatedAt:    s.now().UTC(),
	})
}

// phantomHash is a valid bcrypt hash of an unguessable value, used only to
// keep unknown-username failures as slow as wrong-password failures.
var phantomHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
