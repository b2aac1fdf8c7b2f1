package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/tabsession/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestRedaction(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := slogx.New(slogx.Config{Service: "test", Format: "json", Output: &buf})

	log.Info("login",
		"token", "eyJhbGciOi...",
		"signing_secret", "hunter2",
		"Authorization", "Bearer abc",
		"token_fp", "fingerprint",
		"email", "ada@example.com",
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "[REDACTED]", line["token"])
	require.Equal(t, "[REDACTED]", line["signing_secret"])
	require.Equal(t, "[REDACTED]", line["Authorization"])
	require.Equal(t, "fingerprint", line["token_fp"])
	require.Equal(t, "ada@example.com", line["email"])
	require.Equal(t, "test", line["service"])
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"password":     true,
		"new_password": true,
		"api_key":      true,
		"PEPPER":       true,
		"user_id":      false,
		"code":         false,
	} {
		require.Equal(t, want, slogx.IsSensitiveKey(key), key)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromCtx *slog.Logger
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.Len(t, rec.Header().Get("X-Request-ID"), 26)
		require.NotSame(t, base, fromCtx)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "http_request", line["msg"])
		require.EqualValues(t, http.StatusTeapot, line["status"])
		require.Equal(t, "/livez", line["path"])
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestContextLogger(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := slogx.WithUser(slogx.WithContext(context.Background(), base), 42)

	slogx.FromContext(ctx).Info("password changed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.EqualValues(t, 42, line["user_id"])
}
