package authsdk

import (
	"log/slog"
	"sync"
)

// DefaultEntryPoint is where a forced logout navigates.
const DefaultEntryPoint = "/login"

// Navigator performs the hard navigation to the unauthenticated entry point.
// Navigate may run on a Monitor or Coordinator goroutine and may close the
// Watch that triggered it.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Logouter is anything that can force a logout.
type Logouter interface {
	Logout(reason string) bool
}

// LogoutOrchestrator clears persisted credentials and navigates away,
// exactly once per stored credential. Any number of concurrent callers may
// invoke Logout; only the first has an effect until Arm is called again.
type LogoutOrchestrator struct {
	store  *CredentialStore
	nav    Navigator
	entry  string
	logger *slog.Logger

	mu   sync.Mutex
	done bool
}

type LogoutOption func(*LogoutOrchestrator)

// WithEntryPoint overrides the navigation target.
func WithEntryPoint(target string) LogoutOption {
	return func(o *LogoutOrchestrator) { o.entry = target }
}

// WithLogoutLogger sets the logger used to report logouts.
func WithLogoutLogger(l *slog.Logger) LogoutOption {
	return func(o *LogoutOrchestrator) { o.logger = l }
}

// NewLogoutOrchestrator wires an orchestrator to store. It re-arms itself
// every time the store saves a new credential.
func NewLogoutOrchestrator(store *CredentialStore, nav Navigator, opts ...LogoutOption) *LogoutOrchestrator {
	o := &LogoutOrchestrator{
		store:  store,
		nav:    nav,
		entry:  DefaultEntryPoint,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	store.OnSave(func(string) { o.Arm() })
	return o
}

// Logout clears every credential key in both scopes and navigates to the
// entry point. It reports whether this call did the work. The lock only
// guards the generation flag, so a Navigator may re-enter the orchestrator
// or the store.
func (o *LogoutOrchestrator) Logout(reason string) bool {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return false
	}
	o.done = true
	o.mu.Unlock()

	if err := o.store.Clear(); err != nil {
		o.logger.Error("logout: clearing credentials", slog.String("reason", reason), slog.Any("err", err))
	}
	o.logger.Info("session logged out", slog.String("reason", reason))

	if o.nav != nil {
		o.nav.Navigate(o.entry)
	}
	return true
}

// Arm allows the next Logout to take effect.
func (o *LogoutOrchestrator) Arm() {
	o.mu.Lock()
	o.done = false
	o.mu.Unlock()
}

// Done reports whether the current credential generation has been logged out.
func (o *LogoutOrchestrator) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}
