package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

const passwordUpdatedMessage = "password updated successfully"

// AuthService implements registration, login, password rotation and
// token-to-identity resolution.
type AuthService struct {
	repo    ports.AccountRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	limiter ports.LoginLimiter
	log     zerolog.Logger
	now     func() time.Time
	suffix  func() int
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithLoginLimiter enables per-email login throttling.
func WithLoginLimiter(l ports.LoginLimiter) Option {
	return func(s *AuthService) { s.limiter = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithUsernameSuffix overrides the random suffix used for derived usernames.
func WithUsernameSuffix(fn func() int) Option {
	return func(s *AuthService) { s.suffix = fn }
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an active, unverified customer account and issues a token.
// The password policy is enforced by the caller.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleCustomer,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.create(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, created.Email, created.Role)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("account registered")
	return &ports.AuthResult{Account: created.Public(), AccessToken: token}, nil
}

// create inserts the account. A derived username that collides with an
// existing one is regenerated; an explicit one is reported as a conflict.
func (s *AuthService) create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	derived := account.Username == ""
	for attempt := 1; ; attempt++ {
		if derived {
			account.Username = deriveUsername(account.Email, s.suffix())
		}
		created, err := s.repo.Create(ctx, account)
		if err == nil {
			return created, nil
		}
		if derived && errors.Is(err, domain.ErrUsernameTaken) && attempt < maxUsernameAttempts {
			s.log.Debug().Str("username", account.Username).Int("attempt", attempt).Msg("derived username taken, retrying")
			continue
		}
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create account: %w", err)
	}
}

// Login checks account state before the password, records the login time and
// issues a token. Unknown emails and wrong passwords share one error.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if !account.IsVerified {
		return nil, domain.ErrAccountUnverified
	}
	if !s.hasher.Verify(account.PasswordHash, creds.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	updated, err := s.repo.Update(ctx, account.ID, ports.AccountUpdate{LastLoginAt: &now, UpdatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("login: record last login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login limiter")
		}
	}

	token, err := s.tokens.Issue(updated.ID, updated.Email, updated.Role)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Str("user_id", updated.ID).Msg("login succeeded")
	return &ports.AuthResult{Account: updated.Public(), AccessToken: token}, nil
}

// UpdatePassword replaces the stored hash. Outstanding tokens stay valid.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrAccountNotFound
		}
		return "", fmt.Errorf("update password: lookup account: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, currentPassword) {
		return "", domain.ErrIncorrectPassword
	}
	// Hashes are salted, so sameness is checked by verification.
	if s.hasher.Verify(account.PasswordHash, newPassword) {
		return "", domain.ErrPasswordUnchanged
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("update password: hash password: %w", err)
	}

	if _, err := s.repo.Update(ctx, account.ID, ports.AccountUpdate{PasswordHash: &hash, UpdatedAt: s.now().UTC()}); err != nil {
		return "", fmt.Errorf("update password: persist: %w", err)
	}

	s.log.Info().Str("user_id", account.ID).Msg("password updated")
	return passwordUpdatedMessage, nil
}

// ValidateCredentials returns the account for a matching email/password pair.
// Verification state is not checked here.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("validate credentials: %w", err)
	}
	if !account.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if !s.hasher.Verify(account.PasswordHash, password) {
		return nil, domain.ErrUnauthorized
	}
	return account.Public(), nil
}

// ResolveIdentity verifies token and re-reads the account it names, so that
// deactivating or unverifying an account cuts off its outstanding tokens.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, err
	}

	account, err := s.repo.FindByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Identity{}, domain.ErrAccountRevoked
		}
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	if !account.CanAuthenticate() {
		return domain.Identity{}, domain.ErrAccountRevoked
	}

	return domain.Identity{UserID: account.ID, Email: account.Email, Role: account.Role}, nil
}
