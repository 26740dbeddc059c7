package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/account-service/internal/core/domain"
)

// RequireIdentity returns the identity attached by the Authenticate
// middleware. A request that reached a protected handler without one is
// rejected with domain.ErrForbidden.
func RequireIdentity(c echo.Context) (domain.Identity, error) {
	if id, ok := domain.IdentityFromContext(c.Request().Context()); ok {
		return id, nil
	}
	return domain.Identity{}, domain.ErrForbidden
}
