package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

type accountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

// NewAccountService returns the account-state management service.
func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, log zerolog.Logger) ports.AccountService {
	return &accountService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

func (s *accountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Public(), nil
}

// SetStatus toggles the active and verified flags.
func (s *accountService) SetStatus(ctx context.Context, id string, update ports.StatusUpdate) (*domain.Account, error) {
	if update.IsActive == nil && update.IsVerified == nil {
		return nil, fmt.Errorf("%w: isActive or isVerified is required", domain.ErrValidation)
	}

	updated, err := s.repo.Update(ctx, id, ports.AccountUpdate{
		IsActive:   update.IsActive,
		IsVerified: update.IsVerified,
		UpdatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", updated.ID).
		Bool("is_active", updated.IsActive).
		Bool("is_verified", updated.IsVerified).
		Msg("account status changed")
	return updated.Public(), nil
}

// Deactivate clears both state flags, which revokes every outstanding token.
func (s *accountService) Deactivate(ctx context.Context, id string) error {
	inactive := false
	if _, err := s.repo.Update(ctx, id, ports.AccountUpdate{
		IsActive:   &inactive,
		IsVerified: &inactive,
		UpdatedAt:  s.now().UTC(),
	}); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("account deactivated")
	return nil
}

// EnsureAdmin creates a verified admin account unless the email is already
// registered.
func (s *accountService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("user_id", existing.ID).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return existing.Public(), nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     deriveUsername(email, randomSuffix()),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("bootstrap admin created")
	return created.Public(), nil
}
