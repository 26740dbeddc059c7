package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

const (
	uniqueViolation    = "23505"
	invalidText        = "22P02"
	emailConstraint    = "accounts_email_key"
	usernameConstraint = "accounts_username_key"
	accountColumns     = "id, email, username, password_hash, first_name, last_name, phone, role, is_active, is_verified, last_login_at, created_at, updated_at"
)

// AccountRepository stores accounts in PostgreSQL.
type AccountRepository struct {
	db Querier
}

func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + accountColumns

	row := r.db.QueryRow(ctx, query,
		a.ID, a.Email, a.Username, a.PasswordHash,
		a.FirstName, a.LastName, a.Phone, string(a.Role),
		a.IsActive, a.IsVerified, a.LastLoginAt,
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	created, err := scanAccount(row)
	if err != nil {
		if conflict := uniqueConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) Update(ctx context.Context, id string, update ports.AccountUpdate) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set, args := updateClauses(update)
	args = append(args, id)
	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), accountColumns)

	a, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

// Ping reports whether the pool can reach the database.
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// updateClauses builds the SET list for the non-nil fields of u. updated_at
// is always written.
func updateClauses(u ports.AccountUpdate) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if u.IsVerified != nil {
		add("is_verified", *u.IsVerified)
	}
	if u.LastLoginAt != nil {
		add("last_login_at", u.LastLoginAt.UTC())
	}
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	add("updated_at", updatedAt.UTC())
	return set, args
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Username,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&a.Phone,
		&role,
		&a.IsActive,
		&a.IsVerified,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	return &a, nil
}

// notFound reports a missing row. An id that is not a valid uuid cannot
// name an account either.
func notFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidText
}

func uniqueConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return domain.ErrUsernameTaken
	case emailConstraint:
		return domain.ErrEmailTaken
	}
	return domain.ErrEmailTaken
}
