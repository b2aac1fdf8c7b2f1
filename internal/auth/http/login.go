package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/internal/auth/service"
	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Checks email and password and returns a signed bearer credential valid for 24 hours.
//	@Description	Unknown emails and wrong passwords produce the same response.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing email or password, or password too short"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	httpx.ErrorResponse	"Too many attempts"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/api/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body.", httpx.CodeInvalidRequest)
		return
	}

	res, err := h.AuthService.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required.", httpx.CodeInvalidRequest)
		return
	case errors.Is(err, service.ErrPasswordTooShort):
		httpx.WriteError(w, http.StatusBadRequest, "Password must be at least 6 characters.", httpx.CodeInvalidRequest)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials.", httpx.CodeInvalidCredentials)
		return
	default:
		slogx.FromContext(ctx).Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error.", httpx.CodeInternal)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message: "Login successful!",
		Token:   res.Token,
		User:    publicUser(res.User),
	})
}

func publicUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
