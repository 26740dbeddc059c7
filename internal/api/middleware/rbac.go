package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/account-service/internal/core/domain"
)

// RBAC enforces role-based access control on the authenticated identity.
// Unauthenticated requests are forbidden as well.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return domain.ErrForbidden
			}
			if _, ok := allowed[id.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
