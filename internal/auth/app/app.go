package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	httpapi "github.com/aussiebroadwan/tabsession/internal/auth/http"
	"github.com/aussiebroadwan/tabsession/internal/auth/service"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"

	"golang.org/x/sync/errgroup"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/tabsession/internal/auth/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	codec, err := InitCodec(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize credential codec: %w", err)
	}
	app.codec = codec

	app.initServices()

	if err := app.bootstrapUsers(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Run listens on the configured port and serves until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf(":%d", app.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return app.Serve(ctx, ln)
}

// Serve runs the HTTP server and housekeeping on ln until ctx is cancelled,
// then drains in reverse start order. The database is closed on return.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.housekeepingService.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("auth service starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("version", BuildVersion),
		)
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

func (app *Application) shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.authService = &service.AuthService{
		Store:  app.db,
		Issuer: service.NewTokenIssuer(app.codec),
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.LoginLogRetention,
	)
}

func (app *Application) bootstrapUsers() error {
	users, err := service.ParseBootstrapUsers(app.cfg.BootstrapUsers)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	created, err := app.userService.EnsureUsers(ctx, users)
	if err != nil {
		return fmt.Errorf("failed to bootstrap users: %w", err)
	}
	app.logger.Info("bootstrap users ensured", slog.Int("created", created), slog.Int("requested", len(users)))
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)
	router.Limits = httpapi.Limits{
		Login:   app.cfg.RateLimit.Login,
		Session: app.cfg.RateLimit.Session,
		Probe:   app.cfg.RateLimit.Probe,
	}
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
