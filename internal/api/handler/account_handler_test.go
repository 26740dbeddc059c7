package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/storefront/account-service/internal/core/domain"
	"github.com/storefront/account-service/internal/core/ports"
)

func TestAccountHandler_SetStatus(t *testing.T) {
	accounts := &stubAccountService{
		setStatusFn: func(_ context.Context, id string, u ports.StatusUpdate) (*domain.Account, error) {
			if id != "u2" || u.IsVerified == nil || !*u.IsVerified || u.IsActive != nil {
				t.Fatalf("unexpected update for %s: %+v", id, u)
			}
			return &domain.Account{ID: id, IsActive: true, IsVerified: true}, nil
		},
	}
	h := NewAccountHandler(accounts, zerolog.Nop())

	c, rec := newTestContext(http.MethodPatch, "/admin/users/u2/status", `{"isVerified":true}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, domain.Identity{UserID: "admin", Role: domain.RoleAdmin})

	if err := h.SetStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"isVerified":true`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_SetStatus_NotFound(t *testing.T) {
	accounts := &stubAccountService{
		setStatusFn: func(context.Context, string, ports.StatusUpdate) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	h := NewAccountHandler(accounts, zerolog.Nop())

	c, _ := newTestContext(http.MethodPatch, "/admin/users/x/status", `{"isActive":false}`)
	c.SetParamNames("id")
	c.SetParamValues("x")
	withIdentity(c, domain.Identity{UserID: "admin", Role: domain.RoleAdmin})

	if err := h.SetStatus(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	var got string
	accounts := &stubAccountService{
		deactivateFn: func(_ context.Context, id string) error {
			got = id
			return nil
		},
	}
	h := NewAccountHandler(accounts, zerolog.Nop())

	c, rec := newTestContext(http.MethodDelete, "/admin/users/u3", "")
	c.SetParamNames("id")
	c.SetParamValues("u3")
	withIdentity(c, domain.Identity{UserID: "admin", Role: domain.RoleAdmin})

	if err := h.Deactivate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "u3" || rec.Code != http.StatusOK {
		t.Fatalf("expected u3 deactivated with 200, got %q %d", got, rec.Code)
	}
}

func TestAccountHandler_RequiresIdentity(t *testing.T) {
	h := NewAccountHandler(&stubAccountService{}, zerolog.Nop())

	c, _ := newTestContext(http.MethodDelete, "/admin/users/u3", "")
	if err := h.Deactivate(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
