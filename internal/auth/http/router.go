package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/service"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"

	_ "github.com/aussiebroadwan/tabsession/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied per route group.
type Limits struct {
	Login   httpx.RateLimitConfig
	Session httpx.RateLimitConfig
	Probe   httpx.RateLimitConfig
}

func DefaultLimits() Limits {
	return Limits{
		Login:   httpx.LoginLimit,
		Session: httpx.SessionLimit,
		Probe:   httpx.ProbeLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	gate         *httpx.Gate
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Limits      Limits
	AuthService *service.AuthService
	UserService *service.UserService
}

// NewRouter builds a router whose gate verifies with codec, the same codec
// the AuthService issues with.
func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		gate:         httpx.NewGate(codec),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tabsession Authentication API
//	@version		0.1.0
//	@description	Password login issuing HS256 bearer credentials, plus the guarded profile and password operations.
//	@description
//	@description	Guarded endpoints answer 401 with code TOKEN_MISSING, TOKEN_INVALID or TOKEN_EXPIRED.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tabsession
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer credential from /api/login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	// POST /api/login - strict limit keyed by IP and the email being tried
	r.Mux.Handle("POST /api/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIPAndJSONField(r.Limits.Login, "email"),
		),
	)

	// GET /api/profile - the gate hands claims straight to the handler
	profile := &ProfileHandler{UserService: r.UserService}
	r.Mux.Handle("GET /api/profile",
		httpx.Chain(r.gate.Guard(profile),
			httpx.RateLimitByIP(r.Limits.Session),
		),
	)

	// PUT /api/password - claims travel through the request context so the
	// limiter can key on the user
	password := httpx.Chain(&PasswordHandler{AuthService: r.AuthService},
		r.gate.Middleware(),
		httpx.RateLimitByUser(r.Limits.Session),
	)
	r.Mux.Handle("PUT /api/password", password)
	r.Mux.Handle("POST /api/password", password)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Probe),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.codec),
			httpx.RateLimitByIP(r.Limits.Probe),
		),
	)
}
