package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabsession/internal/auth/service"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

type PasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP changes the caller's password.
//
//	@Summary		Change password
//	@Description	Verifies the current password and stores the new one. The caller's credential stays valid.
//	@Tags			Session
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing fields or new password too short"
//	@Failure		401		{object}	httpx.ErrorResponse	"Credential rejected, or current password incorrect"
//	@Failure		404		{object}	httpx.ErrorResponse	"User not found"
//	@Failure		429		{object}	httpx.ErrorResponse
//	@Router			/api/password [put].
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "No token provided", httpx.CodeTokenMissing)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body.", httpx.CodeInvalidRequest)
		return
	}

	err := h.AuthService.ChangePassword(ctx, claims.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password updated successfully!"})
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "Current password and new password are required.", httpx.CodeInvalidRequest)
	case errors.Is(err, service.ErrPasswordTooShort):
		httpx.WriteError(w, http.StatusBadRequest, "New password must be at least 6 characters.", httpx.CodeInvalidRequest)
	case errors.Is(err, service.ErrIncorrectPassword):
		httpx.WriteError(w, http.StatusUnauthorized, "Current password is incorrect.", httpx.CodeInvalidCredentials)
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found.", httpx.CodeNotFound)
	default:
		slogx.FromContext(ctx).Error("password change failed", "user_id", claims.UserID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error.", httpx.CodeInternal)
	}
}
