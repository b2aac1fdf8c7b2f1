package authsdk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// CoordinatorOptions configure the warning countdown.
type CoordinatorOptions struct {
	// Countdown is the grace period before a forced logout.
	Countdown time.Duration
	// Tick is the wall time per countdown second. Tests shorten it.
	Tick time.Duration
}

func DefaultCoordinatorOptions() CoordinatorOptions {
	return CoordinatorOptions{Countdown: 60 * time.Second, Tick: time.Second}
}

// SessionRefresher obtains a replacement credential. The auth service has
// no refresh endpoint, so this is a hook for deployments that add one.
type SessionRefresher interface {
	Refresh(ctx context.Context) (token string, err error)
}

// RefresherFunc adapts a function to SessionRefresher.
type RefresherFunc func(ctx context.Context) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context) (string, error) { return f(ctx) }

// TokenReplacer stores a refreshed credential. *CredentialStore satisfies it.
type TokenReplacer interface {
	ReplaceToken(token string) error
}

// Coordinator runs the grace-period countdown that follows a session
// warning and applies the user's choice: dismiss, extend or log out now.
// Its countdown is independent of the credential's own expiry.
type Coordinator struct {
	logout    Logouter
	store     TokenReplacer
	refresher SessionRefresher
	opts      CoordinatorOptions
	logger    *slog.Logger

	mu       sync.Mutex
	active   bool
	left     int
	stop     chan struct{}
	onChange []func(CountdownState)

	wg      sync.WaitGroup
	ticking atomic.Bool // set while the countdown goroutine runs callbacks
	extend  singleflight.Group
}

type CoordinatorOption func(*Coordinator)

// WithRefresher wires the collaborator used by Extend.
func WithRefresher(r SessionRefresher) CoordinatorOption {
	return func(c *Coordinator) { c.refresher = r }
}

func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

func NewCoordinator(logout Logouter, store TokenReplacer, opts CoordinatorOptions, options ...CoordinatorOption) *Coordinator {
	def := DefaultCoordinatorOptions()
	if opts.Countdown <= 0 {
		opts.Countdown = def.Countdown
	}
	if opts.Tick <= 0 {
		opts.Tick = def.Tick
	}

	c := &Coordinator{
		logout: logout,
		store:  store,
		opts:   opts,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// OnChange registers fn to observe countdown changes.
func (c *Coordinator) OnChange(fn func(CountdownState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Countdown returns the current countdown.
func (c *Coordinator) Countdown() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CountdownState{Active: c.active, SecondsLeft: c.left}
}

// Activate starts the countdown. It does nothing while a countdown is
// already running.
func (c *Coordinator) Activate(s State) {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.left = int(c.opts.Countdown / time.Second)
	stop := make(chan struct{})
	c.stop = stop
	c.wg.Add(1)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("session expiring, countdown started",
		slog.Int64("seconds_remaining", s.SecondsRemaining),
		slog.Int("countdown", snap.state.SecondsLeft),
	)
	snap.fire()

	go c.run(stop)
}

func (c *Coordinator) run(stop chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.stop != stop {
			// Dismissed between the tick firing and taking the lock.
			c.mu.Unlock()
			return
		}
		c.left--
		elapsed := c.left <= 0
		if elapsed {
			c.left = 0
			c.active = false
			c.stop = nil
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		if c.tick(snap, elapsed) {
			return
		}
	}
}

// tick runs one countdown step's callbacks and reports whether the
// countdown is over.
func (c *Coordinator) tick(snap countdownSnapshot, elapsed bool) bool {
	c.ticking.Store(true)
	defer c.ticking.Store(false)

	snap.fire()
	if elapsed {
		c.logout.Logout("warning countdown elapsed")
	}
	return elapsed
}

// Dismiss stops the countdown and keeps the session. The monitor's warning
// latch is untouched, so the same credential does not warn again.
func (c *Coordinator) Dismiss() {
	c.halt()
}

// Extend asks the SessionRefresher for a new credential. Without a
// refresher it behaves as Dismiss. On success the new credential is stored
// and the countdown stops; on failure the countdown keeps running and the
// error is returned. Concurrent calls share one refresh.
func (c *Coordinator) Extend(ctx context.Context) error {
	if c.refresher == nil {
		c.Dismiss()
		return nil
	}

	_, err, _ := c.extend.Do("extend", func() (any, error) {
		token, err := c.refresher.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, errors.New("authsdk: refresher returned an empty token")
		}
		return nil, c.store.ReplaceToken(token)
	})
	if err != nil {
		c.logger.Warn("session extend failed", slog.Any("err", err))
		return err
	}

	c.halt()
	c.logger.Info("session extended")
	return nil
}

// LogoutNow stops the countdown and forces a logout immediately.
func (c *Coordinator) LogoutNow() {
	c.halt()
	c.logout.Logout("user requested")
}

// Close stops any countdown and waits for its goroutine to exit. Called
// from that goroutine, through an OnChange callback or the forced logout's
// Navigator, it stops the countdown without waiting.
func (c *Coordinator) Close() {
	c.halt()
	if c.ticking.Load() {
		return
	}
	c.wg.Wait()
}

func (c *Coordinator) halt() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	close(c.stop)
	c.stop = nil
	c.active = false
	c.left = 0
	snap := c.snapshotLocked()
	c.mu.Unlock()

	snap.fire()
}

type countdownSnapshot struct {
	state CountdownState
	fns   []func(CountdownState)
}

func (c *Coordinator) snapshotLocked() countdownSnapshot {
	return countdownSnapshot{
		state: CountdownState{Active: c.active, SecondsLeft: c.left},
		fns:   append([]func(CountdownState){}, c.onChange...),
	}
}

func (s countdownSnapshot) fire() {
	for _, fn := range s.fns {
		fn(s.state)
	}
}
