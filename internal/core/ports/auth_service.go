package ports

import (
	"context"

	"github.com/storefront/account-service/internal/core/domain"
)

// RegisterInput carries an already validated registration request.
type RegisterInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Credentials are request scoped and never persisted.
type Credentials struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login. Account never carries a hash.
type AuthResult struct {
	Account     *domain.Account
	AccessToken string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error)
	ValidateCredentials(ctx context.Context, email, password string) (*domain.Account, error)
	ResolveIdentity(ctx context.Context, token string) (domain.Identity, error)
}

// StatusUpdate toggles account state flags. Nil fields are left untouched.
type StatusUpdate struct {
	IsActive   *bool
	IsVerified *bool
}

// AccountService covers account-state management outside the login flow.
type AccountService interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	SetStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Account, error)
	Deactivate(ctx context.Context, id string) error
	EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error)
}
