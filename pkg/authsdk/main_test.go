package authsdk_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Keep-alive connections of closed httptest servers wind down asynchronously.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

var epoch = time.Unix(1_700_000_000, 0)

// mintToken signs a credential issued at issuedAt with the default TTL.
func mintToken(t *testing.T, id int64, issuedAt time.Time) (string, jwtx.Claims) {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret: []byte("sdk-test-secret"),
		Now:    func() time.Time { return issuedAt },
	})
	require.NoError(t, err)
	tok, claims, err := codec.Issue(jwtx.Identity{UserID: id, Email: "user@example.com", Role: "user"})
	require.NoError(t, err)
	return tok, claims
}

// recordingLogout counts Logout calls and reasons.
type recordingLogout struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingLogout) Logout(reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return true
}

func (r *recordingLogout) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

// countingNavigator records navigation targets.
type countingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *countingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *countingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

func newStore() (*authsdk.CredentialStore, *authsdk.MemoryStorage, *authsdk.MemoryStorage) {
	durable := authsdk.NewMemoryStorage()
	session := authsdk.NewMemoryStorage()
	return authsdk.NewCredentialStore(durable, session), durable, session
}

func requireNoCredentialKeys(t *testing.T, scopes ...authsdk.Storage) {
	t.Helper()
	for _, s := range scopes {
		for _, k := range authsdk.CredentialKeys {
			_, ok, err := s.Get(k)
			require.NoError(t, err)
			require.False(t, ok, "key %q still present", k)
		}
	}
}
