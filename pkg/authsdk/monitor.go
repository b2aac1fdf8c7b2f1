package authsdk

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

// MonitorOptions configure a Monitor.
type MonitorOptions struct {
	// WarningThreshold is how long before expiry the session enters Warning.
	WarningThreshold time.Duration
	// CheckInterval is the poll period.
	CheckInterval time.Duration
	// AutoLogout forces a logout as soon as the session is found expired.
	AutoLogout bool
	// ShowWarning sends the out-of-band Notifier message on entering Warning.
	ShowWarning bool
}

// DefaultMonitorOptions returns a 5 minute warning threshold polled every
// 10 seconds, with automatic logout and warnings enabled.
func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		WarningThreshold: 300 * time.Second,
		CheckInterval:    10 * time.Second,
		AutoLogout:       true,
		ShowWarning:      true,
	}
}

// TokenSource yields the authoritative stored credential.
// *CredentialStore satisfies it.
type TokenSource interface {
	Token() (string, bool, error)
}

// Notifier delivers the out-of-band warning message to the user.
type Notifier interface {
	Notify(message string, state State)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, state State)

func (f NotifierFunc) Notify(message string, state State) { f(message, state) }

// Monitor periodically derives the session State from the stored credential.
//
// Entering the warning window trips a latch so warning handlers run once per
// credential. The latch resets when a different token is stored or the
// credential disappears.
type Monitor struct {
	src      TokenSource
	logout   Logouter
	opts     MonitorOptions
	clock    Clock
	notifier Notifier
	logger   *slog.Logger

	mu           sync.Mutex
	state        State
	latched      bool
	latchedToken string
	onState      []func(State)
	onWarning    []func(State)

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	polling atomic.Bool // set while the poll goroutine runs a check
}

type MonitorOption func(*Monitor)

func WithMonitorClock(c Clock) MonitorOption {
	return func(m *Monitor) { m.clock = c }
}

func WithNotifier(n Notifier) MonitorOption {
	return func(m *Monitor) { m.notifier = n }
}

func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// NewMonitor builds a monitor. Zero option durations fall back to the
// defaults.
func NewMonitor(src TokenSource, logout Logouter, opts MonitorOptions, options ...MonitorOption) *Monitor {
	def := DefaultMonitorOptions()
	if opts.WarningThreshold <= 0 {
		opts.WarningThreshold = def.WarningThreshold
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = def.CheckInterval
	}

	m := &Monitor{
		src:    src,
		logout: logout,
		opts:   opts,
		clock:  SystemClock,
		logger: slog.Default(),
		state:  State{Status: StatusNoToken, Label: "No token"},
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// OnState registers fn to receive every computed State.
func (m *Monitor) OnState(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onState = append(m.onState, fn)
}

// OnWarning registers fn to run once per credential when it enters the
// warning window.
func (m *Monitor) OnWarning(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWarning = append(m.onWarning, fn)
}

// State returns the result of the most recent check.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Check reads the stored credential once, updates State and runs any
// resulting side effects. Callbacks run on the calling goroutine after the
// monitor's lock is released.
func (m *Monitor) Check() State {
	token, ok, err := m.src.Token()
	if err != nil {
		m.logger.Warn("session monitor: reading credential", slog.Any("err", err))
		ok = false
	}

	threshold := int64(m.opts.WarningThreshold / time.Second)

	var (
		next      State
		tripped   bool
		forceOut  bool
		outReason string
	)

	m.mu.Lock()
	switch {
	case !ok:
		next = State{Status: StatusNoToken, Label: "No token"}
		m.latched, m.latchedToken = false, ""
		forceOut, outReason = m.opts.AutoLogout, "no token"

	default:
		if token != m.latchedToken {
			m.latched, m.latchedToken = false, token
		}

		claims, err := jwtx.Inspect(token)
		if err != nil {
			next = State{Status: StatusExpired, Label: "Expired"}
			forceOut, outReason = m.opts.AutoLogout, "unreadable token"
			break
		}

		secs := claims.SecondsRemaining(m.clock.Now())
		switch {
		case secs <= 0:
			next = State{Status: StatusExpired, Label: "Expired"}
			forceOut, outReason = m.opts.AutoLogout, "token expired"
		case secs <= threshold:
			next = State{Status: StatusWarning, SecondsRemaining: secs, Label: FormatRemaining(secs)}
			if !m.latched {
				m.latched = true
				tripped = true
			}
		default:
			next = State{Status: StatusValid, SecondsRemaining: secs, Label: FormatRemaining(secs)}
		}
	}
	prev := m.state
	m.state = next
	onState := append([]func(State){}, m.onState...)
	onWarning := append([]func(State){}, m.onWarning...)
	m.mu.Unlock()

	if prev.Status != next.Status {
		m.logger.Debug("session state changed",
			slog.String("from", prev.Status.String()),
			slog.String("to", next.Status.String()),
			slog.Int64("seconds_remaining", next.SecondsRemaining),
		)
	}

	for _, fn := range onState {
		fn(next)
	}
	if tripped {
		for _, fn := range onWarning {
			fn(next)
		}
		if m.opts.ShowWarning && m.notifier != nil {
			m.notifier.Notify(WarningMessage(next.SecondsRemaining), next)
		}
	}
	if forceOut && m.logout != nil {
		m.logout.Logout(outReason)
	}

	return next
}

// Start checks immediately and then every CheckInterval until ctx is done
// or Stop is called. Starting a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done

	go func() {
		defer close(done)

		m.poll()

		ticker := time.NewTicker(m.opts.CheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.poll()
			}
		}
	}()
}

func (m *Monitor) poll() {
	m.polling.Store(true)
	defer m.polling.Store(false)
	m.Check()
}

// Stop cancels polling and waits for the poll goroutine to exit. It is safe
// to call more than once. While a poll check is running, for example when a
// callback or the Navigator it reaches calls Stop, Stop only cancels: the
// goroutine exits once that check returns.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if m.polling.Load() {
		return
	}
	<-done
}
