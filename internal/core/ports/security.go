package ports

import (
	"context"
	"time"

	"github.com/storefront/account-service/internal/core/domain"
)

// PasswordHasher produces salted one-way hashes and verifies plaintext against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenClaims is the decoded payload of a verified identity token.
type TokenClaims struct {
	SubjectID string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies identity tokens. Verify returns
// domain.ErrInvalidToken or domain.ErrTokenExpired on failure.
type TokenIssuer interface {
	Issue(subjectID, email string, role domain.Role) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// LoginLimiter throttles login attempts per key (normalised email).
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
