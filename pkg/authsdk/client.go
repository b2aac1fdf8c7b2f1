package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the auth service and owns the local credential store.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      *CredentialStore

	logger *slog.Logger
}

type ClientOption func(*SDKClient)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *SDKClient) { c.HTTPClient = hc }
}

// WithLogger sets the logger used by the client and the components built
// from it.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *SDKClient) { c.logger = l }
}

// NewSDKClient creates a client for baseURL persisting credentials in store.
// A nil store keeps both scopes in memory.
func NewSDKClient(baseURL string, store *CredentialStore, opts ...ClientOption) *SDKClient {
	if store == nil {
		store = NewCredentialStore(nil, nil)
	}
	c := &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Store:      store,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates with email and password and stores the credential,
// in the durable scope when remember is set and the session scope
// otherwise. A rejected login returns an *APIError carrying the server's
// generic message.
func (c *SDKClient) Login(ctx context.Context, email, password string, remember bool) (*LoginResponse, error) {
	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/login", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("authsdk: login response has no token")
	}

	scope := ScopeSession
	if remember {
		scope = ScopeDurable
	}
	if err := c.Store.Save(scope, out.Token, out.User); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	c.logger.Info("logged in", slog.Int64("user_id", out.User.ID), slog.Bool("remember", remember))
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
