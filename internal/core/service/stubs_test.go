package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	createFn func(a *domain.Account) error
	findErr  error
	creates  int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createFn != nil {
		if err := r.createFn(account); err != nil {
			return nil, err
		}
	}
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrEmailTaken
		}
		if a.Username == account.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.accounts[account.ID] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.IsVerified != nil {
		a.IsVerified = *u.IsVerified
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		a.LastLoginAt = &t
	}
	a.UpdatedAt = u.UpdatedAt
	return cloneAccount(a), nil
}

// stubHasher produces salted, non-deterministic "hashes" without bcrypt's cost.
type stubHasher struct {
	mu   sync.Mutex
	salt int
}

func (h *stubHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.salt++
	return fmt.Sprintf("hash$%d$%s", h.salt, password), nil
}

func (h *stubHasher) Verify(hash, password string) bool {
	parts := strings.SplitN(hash, "$", 3)
	return len(parts) == 3 && parts[0] == "hash" && parts[2] == password
}

type stubTokens struct {
	mu     sync.Mutex
	issued int
	claims map[string]*ports.TokenClaims
	err    error
}

func newStubTokens() *stubTokens {
	return &stubTokens{claims: make(map[string]*ports.TokenClaims)}
}

func (s *stubTokens) Issue(subjectID, email string, role domain.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	tok := fmt.Sprintf("token-%d", s.issued)
	s.claims[tok] = &ports.TokenClaims{SubjectID: subjectID, Email: email, Role: role, IssuedAt: time.Now()}
	return tok, nil
}

func (s *stubTokens) Verify(token string) (*ports.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.claims[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

type stubLimiter struct {
	allow  bool
	err    error
	resets []string
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, error) { return l.allow, l.err }

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}
