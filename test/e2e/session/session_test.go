package session_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)

	live, err := s.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := s.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
}

func TestLoginAndProfile(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)

	resp := s.login(t, userEmail, userPassword)
	require.Equal(t, "Login successful!", resp.Message)
	require.Equal(t, "Ada Lovelace", resp.User.FullName)

	stored, err := s.store.User()
	require.NoError(t, err)
	require.Equal(t, resp.User, *stored)

	profile, err := s.gateway.Profile(t.Context())
	require.NoError(t, err)
	require.Equal(t, userEmail, profile.User.Email)
	require.Equal(t, int64(24*60*60), profile.Expiry-profile.IssuedAt)
	require.NotEmpty(t, profile.LastLogins)
}

func TestLoginRejectionsShareOneMessage(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)

	_, err := s.client.Login(t.Context(), "nobody@example.com", "whatever", false)
	unknown := requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)

	_, err = s.client.Login(t.Context(), userEmail, "wrong-password", false)
	wrong := requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)

	require.Equal(t, unknown.Message, wrong.Message)

	_, ok, err := s.store.Token()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTamperedCredentialForcesLogout(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)
	resp := s.login(t, userEmail, userPassword)

	require.NoError(t, s.store.ReplaceToken(resp.Token[:len(resp.Token)-2]+"xx"))

	r := s.gateway.Get(t.Context(), "/api/profile")
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, authsdk.MessageSessionExpired, r.Message)

	select {
	case target := <-s.navigated:
		require.Equal(t, authsdk.DefaultEntryPoint, target)
	case <-time.After(time.Second):
		t.Fatal("expected navigation to the entry point")
	}

	_, ok, err := s.store.Token()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMissingCredential(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)

	r := s.gateway.Get(t.Context(), "/api/profile")
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, authsdk.CodeTokenMissing, r.Code)
}

func TestChangePassword(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, nil))
	s := newSession(baseURL)
	s.login(t, adminEmail, adminPassword)

	err := s.gateway.ChangePassword(t.Context(), "not-my-password", "brand-new-pass")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)

	require.NoError(t, s.gateway.ChangePassword(t.Context(), adminPassword, "brand-new-pass"))

	// The current credential stays valid until it expires.
	_, err = s.gateway.Profile(t.Context())
	require.NoError(t, err)

	other := newSession(baseURL)
	_, err = other.client.Login(t.Context(), adminEmail, adminPassword, false)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)
	other.login(t, adminEmail, "brand-new-pass")
}

func TestCredentialExpiry(t *testing.T) {
	baseURL := startAuth(t, containerEnv(true, map[string]string{"AUTH_TOKEN_TTL": "4s"}))
	s := newSession(baseURL)
	resp := s.login(t, userEmail, userPassword)
	token := resp.Token

	var warnings []authsdk.State
	mon := authsdk.NewMonitor(s.store, s.logout, authsdk.MonitorOptions{
		WarningThreshold: 2 * time.Second,
		CheckInterval:    100 * time.Millisecond,
		AutoLogout:       true,
	})
	mon.OnWarning(func(st authsdk.State) { warnings = append(warnings, st) })
	mon.Start(t.Context())
	defer mon.Stop()

	select {
	case target := <-s.navigated:
		require.Equal(t, authsdk.DefaultEntryPoint, target)
	case <-time.After(10 * time.Second):
		t.Fatal("monitor did not force a logout")
	}
	mon.Stop()
	require.Len(t, warnings, 1)

	// The server agrees the credential is dead.
	stale := newSession(baseURL)
	require.NoError(t, stale.store.Save(authsdk.ScopeSession, token, resp.User))
	r := stale.gateway.Get(t.Context(), "/api/profile")
	require.Equal(t, http.StatusUnauthorized, r.Status)
	require.Equal(t, authsdk.MessageSessionExpired, r.Message)
}

func TestLoginRateLimit(t *testing.T) {
	baseURL := startAuth(t, containerEnv(false, nil))
	s := newSession(baseURL)

	var limited bool
	for range 10 {
		_, err := s.client.Login(t.Context(), userEmail, "wrong-password", false)
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		if apiErr.StatusCode == http.StatusTooManyRequests {
			require.Equal(t, authsdk.CodeRateLimited, apiErr.Code)
			limited = true
			break
		}
	}
	require.True(t, limited, "login should be rate limited under the default limits")

	// A different account from the same address has its own bucket.
	s.login(t, adminEmail, adminPassword)
}
