package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

func TestSetFields_OnlyProvidedFields(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	active := false
	hash := "h"

	set := setFields(ports.AccountUpdate{IsActive: &active, PasswordHash: &hash, UpdatedAt: now})

	if len(set) != 3 {
		t.Fatalf("expected 3 fields, got %v", set)
	}
	if set["is_active"] != false || set["password_hash"] != "h" || set["updated_at"] != now {
		t.Fatalf("unexpected $set: %v", set)
	}
	if _, ok := set["is_verified"]; ok {
		t.Fatalf("nil field must not be written")
	}
}

func TestSetFields_ZeroUpdatedAtDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	verified := true

	set := setFields(ports.AccountUpdate{IsVerified: &verified})

	got, ok := set["updated_at"].(time.Time)
	if !ok || got.IsZero() || got.Before(before.Add(-time.Second)) {
		t.Fatalf("expected updated_at near now, got %v", set["updated_at"])
	}
}

func TestDuplicateKeyError(t *testing.T) {
	usernameDup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: accounts.accounts index: uniq_username dup key",
	}}}
	emailDup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: accounts.accounts index: uniq_email dup key",
	}}}

	if !mongo.IsDuplicateKeyError(usernameDup) {
		t.Fatalf("expected driver to classify as duplicate key")
	}
	if err := duplicateKeyError(usernameDup); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if err := duplicateKeyError(emailDup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAccountDoc_RoundTrip(t *testing.T) {
	login := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &domain.Account{
		ID:           "id-1",
		Email:        "a@x.com",
		Username:     "a-1",
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
		IsActive:     true,
		LastLoginAt:  &login,
		CreatedAt:    login,
		UpdatedAt:    login,
	}

	out := toDoc(in).toDomain()
	if out.ID != in.ID || out.Role != domain.RoleAdmin || out.PasswordHash != "hash" || !out.IsActive || out.IsVerified {
		t.Fatalf("unexpected account: %+v", out)
	}
	if out.LastLoginAt == nil || !out.LastLoginAt.Equal(login) {
		t.Fatalf("expected last login preserved")
	}
}
