package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/account-service/internal/api/metrics"
	"github.com/storefront/account-service/internal/core/domain"
)

// IdentityResolver turns a bearer token into the caller's identity, checking
// the account's current state.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (domain.Identity, error)
}

// Authenticate resolves a bearer token when one is present. Requests without
// a well-formed "Bearer <token>" header pass through unauthenticated; a
// token that fails to resolve ends the request with the resolver's error.
func Authenticate(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			req := c.Request()
			id, err := resolver.ResolveIdentity(req.Context(), token)
			metrics.TokenChecksTotal.WithLabelValues(tokenResult(err)).Inc()
			if err != nil {
				return err
			}

			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domain.ErrAccountRevoked):
		return "revoked"
	}
	return "error"
}
