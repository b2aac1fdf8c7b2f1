package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabsession/internal/auth/service"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

const profileLoginHistory = 5

type ProfileHandler struct {
	UserService *service.UserService
}

// ServeAuthenticated returns the caller's profile.
//
//	@Summary		Get profile
//	@Description	Returns the stored user for the credential's subject, the credential's iat/exp and recent login activity.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"TOKEN_MISSING, TOKEN_INVALID or TOKEN_EXPIRED"
//	@Failure		404	{object}	httpx.ErrorResponse	"User not found"
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/api/profile [get].
func (h *ProfileHandler) ServeAuthenticated(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.UserService.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "User not found.", httpx.CodeNotFound)
		return
	}
	if err != nil {
		log.Error("failed to load user", "user_id", claims.UserID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error.", httpx.CodeInternal)
		return
	}

	events, err := h.UserService.RecentLogins(ctx, user.ID, profileLoginHistory)
	if err != nil {
		// The profile is still useful without history.
		log.Warn("failed to load login history", "user_id", user.ID, "error", err)
	}

	resp := authsdk.ProfileResponse{
		User:     publicUser(user),
		IssuedAt: claims.IssuedAtUnix(),
		Expiry:   claims.ExpiryUnix(),
	}
	for _, e := range events {
		resp.LastLogins = append(resp.LastLogins, authsdk.LoginEvent{
			Action: string(e.Action),
			At:     e.At.Unix(),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
