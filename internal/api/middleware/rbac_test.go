package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/account-service/internal/core/domain"
)

func contextWithRole(role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(domain.WithIdentity(req.Context(), domain.Identity{UserID: "u1", Role: role}))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRBAC_Allows(t *testing.T) {
	c, rec := contextWithRole(domain.RoleAdmin)

	called := false
	handler := RBAC(domain.RoleAdmin, domain.RoleSeller)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	c, _ := contextWithRole(domain.RoleCustomer)

	err := RBAC(domain.RoleAdmin)(func(echo.Context) error {
		t.Fatalf("next handler must not run")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRBAC_ForbidsUnauthenticated(t *testing.T) {
	c, _ := contextWithRole("")

	err := RBAC(domain.RoleAdmin)(func(echo.Context) error {
		t.Fatalf("next handler must not run")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
