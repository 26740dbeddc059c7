package ports

import (
	"context"
	"time"

	"github.com/storefront/account-service/internal/core/domain"
)

// AccountUpdate is a partial update. Nil fields are left untouched; UpdatedAt
// is always written.
type AccountUpdate struct {
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Phone        *string
	IsActive     *bool
	IsVerified   *bool
	LastLoginAt  *time.Time
	UpdatedAt    time.Time
}

// AccountRepository is the credential store. Implementations enforce unique
// email and username and report violations as domain.ErrEmailTaken or
// domain.ErrUsernameTaken. Lookups that match nothing return
// domain.ErrAccountNotFound.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, id string, update AccountUpdate) (*domain.Account, error)
}
