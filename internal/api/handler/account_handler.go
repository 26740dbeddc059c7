package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/account-service/internal/api/metrics"
	"github.com/storefront/account-service/internal/core/ports"
)

// AccountHandler exposes administrative account-state operations.
type AccountHandler struct {
	accounts ports.AccountService
	log      zerolog.Logger
}

func NewAccountHandler(accounts ports.AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

// SetStatus toggles the active and verified flags of an account.
//
// @Summary      Update account status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Account id"
// @Param        body  body      statusRequest  true  "Flags to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id}/status [patch]
func (h *AccountHandler) SetStatus(c echo.Context) error {
	admin, err := RequireIdentity(c)
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.accounts.SetStatus(c.Request().Context(), c.Param("id"), ports.StatusUpdate{
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		return err
	}

	metrics.AccountStatusChangesTotal.WithLabelValues("status").Inc()
	h.log.Info().
		Str("admin_id", admin.UserID).
		Str("user_id", account.ID).
		Bool("is_active", account.IsActive).
		Bool("is_verified", account.IsVerified).
		Msg("admin changed account status")
	return c.JSON(http.StatusOK, userResponse{User: account})
}

// Deactivate disables an account. Outstanding tokens stop resolving.
//
// @Summary      Deactivate account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	admin, err := RequireIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.accounts.Deactivate(c.Request().Context(), id); err != nil {
		return err
	}

	metrics.AccountStatusChangesTotal.WithLabelValues("deactivate").Inc()
	h.log.Info().Str("admin_id", admin.UserID).Str("user_id", id).Msg("admin deactivated account")
	return c.JSON(http.StatusOK, messageResponse{Message: "user deactivated successfully"})
}
