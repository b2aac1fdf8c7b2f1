package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

// Verifier decodes a raw bearer token. *jwtx.Codec satisfies it.
type Verifier interface {
	Decode(token string) (jwtx.Claims, error)
}

// GuardedHandler is an operation that runs only after the gate has verified
// the caller. Claims are handed over explicitly rather than through the
// request.
type GuardedHandler interface {
	ServeAuthenticated(w http.ResponseWriter, r *http.Request, claims jwtx.Claims)
}

// GuardedFunc adapts a function to GuardedHandler.
type GuardedFunc func(w http.ResponseWriter, r *http.Request, claims jwtx.Claims)

func (f GuardedFunc) ServeAuthenticated(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
	f(w, r, claims)
}

// Rejection is a classified verification failure.
type Rejection struct {
	Code    string
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Code + ": " + r.Err.Error()
	}
	return r.Code
}

func (r *Rejection) Unwrap() error { return r.Err }

// Write sends the rejection as a 401 with an RFC 6750 challenge.
func (r *Rejection) Write(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+r.Message+`"`)
	WriteError(w, http.StatusUnauthorized, r.Message, r.Code)
}

var (
	rejectMissing = Rejection{Code: CodeTokenMissing, Message: "No token provided"}
	rejectInvalid = Rejection{Code: CodeTokenInvalid, Message: "Invalid token"}
	rejectExpired = Rejection{Code: CodeTokenExpired, Message: "Token has expired"}
)

// Gate guards handlers behind bearer credential verification. It holds no
// mutable state and may serve any number of concurrent requests.
type Gate struct {
	verifier Verifier
}

func NewGate(v Verifier) *Gate {
	return &Gate{verifier: v}
}

// Verify extracts the bearer token from r and classifies it.
func (g *Gate) Verify(r *http.Request) (jwtx.Claims, *Rejection) {
	raw, ok := BearerToken(r)
	if !ok {
		rej := rejectMissing
		return jwtx.Claims{}, &rej
	}

	claims, err := g.verifier.Decode(raw)
	if err == nil {
		return claims, nil
	}

	var rej Rejection
	if errors.Is(err, jwtx.ErrExpired) {
		rej = rejectExpired
	} else {
		rej = rejectInvalid
	}
	rej.Err = err

	slogx.FromContext(r.Context()).Warn("token rejected",
		slog.String("code", rej.Code),
		slog.String("token_fp", cryptox.FingerprintToken(raw)),
		slog.Any("err", err),
	)
	return jwtx.Claims{}, &rej
}

// Guard wraps h so it only runs for requests carrying a valid credential.
func (g *Gate) Guard(h GuardedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, rej := g.Verify(r)
		if rej != nil {
			rej.Write(w)
			return
		}
		r = r.WithContext(slogx.WithUser(r.Context(), claims.UserID))
		h.ServeAuthenticated(w, r, claims)
	})
}

// Middleware is the Chain-compatible form of Guard for plain handlers.
// Verified claims are available through ClaimsFromContext.
func (g *Gate) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return g.Guard(GuardedFunc(func(w http.ResponseWriter, r *http.Request, claims jwtx.Claims) {
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		}))
	}
}

// BearerToken returns the credential from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
