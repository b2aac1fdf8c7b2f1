package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
)

// Codes the SDK recognises in {"message","code"} bodies. The token codes are
// produced by the server's verification gate.
const (
	CodeTokenMissing       = httpx.CodeTokenMissing
	CodeTokenInvalid       = httpx.CodeTokenInvalid
	CodeTokenExpired       = httpx.CodeTokenExpired
	CodeInvalidRequest     = httpx.CodeInvalidRequest
	CodeInvalidCredentials = httpx.CodeInvalidCredentials
	CodeRateLimited        = httpx.CodeRateLimited

	// CodeNetworkError marks a transport failure. It never comes from the
	// server.
	CodeNetworkError = "NETWORK_ERROR"
)

const (
	MessageSessionExpired = "Session expired. Please log in again."
	MessageNetworkError   = "Network error occurred"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a stored
	// credential and there is none.
	ErrNotAuthenticated = errors.New("authsdk: not authenticated")

	// ErrNoRefresher is returned by a refresher that cannot extend sessions.
	ErrNoRefresher = errors.New("authsdk: session refresh not available")
)

// APIError is a non-2xx response from the auth service.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTokenRejection reports whether the error is a 401 carrying a code that
// means the stored credential can no longer be used.
func (e *APIError) IsTokenRejection() bool {
	return e.StatusCode == http.StatusUnauthorized &&
		(e.Code == CodeTokenExpired || e.Code == CodeTokenInvalid)
}

// parseErrorResponse builds an APIError from a response body, falling back to
// the status text when the body is not the expected JSON shape.
func parseErrorResponse(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Code = ""
	}
	apiErr.StatusCode = status
	if strings.TrimSpace(apiErr.Message) == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
