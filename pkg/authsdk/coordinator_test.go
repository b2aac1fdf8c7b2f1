package authsdk_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

type countdownLog struct {
	mu     sync.Mutex
	states []authsdk.CountdownState
}

func (l *countdownLog) record(s authsdk.CountdownState) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
}

func (l *countdownLog) last() authsdk.CountdownState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.states) == 0 {
		return authsdk.CountdownState{}
	}
	return l.states[len(l.states)-1]
}

func warningState() authsdk.State {
	return authsdk.State{Status: authsdk.StatusWarning, SecondsRemaining: 300}
}

func TestCoordinatorActivateSeedsCountdown(t *testing.T) {
	logout := &recordingLogout{}
	store, _, _ := newStore()
	c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Tick: time.Hour})
	defer c.Close()

	log := &countdownLog{}
	c.OnChange(log.record)

	c.Activate(warningState())
	require.Equal(t, authsdk.CountdownState{Active: true, SecondsLeft: 60}, c.Countdown())
	require.Equal(t, authsdk.CountdownState{Active: true, SecondsLeft: 60}, log.last())

	c.Activate(warningState())
	require.Equal(t, 60, c.Countdown().SecondsLeft, "second activation is ignored")
}

func TestCoordinatorCountdownElapses(t *testing.T) {
	logout := &recordingLogout{}
	store, _, _ := newStore()
	c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{
		Countdown: 3 * time.Second,
		Tick:      2 * time.Millisecond,
	})
	defer c.Close()

	log := &countdownLog{}
	c.OnChange(log.record)
	c.Activate(warningState())

	require.Eventually(t, func() bool { return logout.Count() == 1 }, time.Second, time.Millisecond)
	require.Equal(t, authsdk.CountdownState{}, c.Countdown())

	log.mu.Lock()
	defer log.mu.Unlock()
	var left []int
	for _, s := range log.states {
		left = append(left, s.SecondsLeft)
	}
	require.Equal(t, []int{3, 2, 1, 0}, left)
}

func TestCoordinatorDismiss(t *testing.T) {
	logout := &recordingLogout{}
	store, _, _ := newStore()
	c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{
		Countdown: 2 * time.Second,
		Tick:      5 * time.Millisecond,
	})

	c.Activate(warningState())
	c.Dismiss()
	c.Dismiss()
	require.False(t, c.Countdown().Active)

	time.Sleep(30 * time.Millisecond)
	c.Close()
	require.Zero(t, logout.Count(), "dismissed countdown never logs out")
}

func TestCoordinatorExtend(t *testing.T) {
	t.Run("without refresher acts as dismiss", func(t *testing.T) {
		logout := &recordingLogout{}
		store, _, _ := newStore()
		c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Tick: time.Hour})
		defer c.Close()

		c.Activate(warningState())
		require.NoError(t, c.Extend(context.Background()))
		require.False(t, c.Countdown().Active)
		require.Zero(t, logout.Count())
	})

	t.Run("refresher success stores token", func(t *testing.T) {
		logout := &recordingLogout{}
		store, _, session := newStore()
		require.NoError(t, store.Save(authsdk.ScopeSession, "old", authsdk.User{ID: 1}))

		var calls atomic.Int32
		release := make(chan struct{})
		c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Tick: time.Hour},
			authsdk.WithRefresher(authsdk.RefresherFunc(func(ctx context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "fresh", nil
			})),
		)
		defer c.Close()
		c.Activate(warningState())

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.Extend(context.Background()); err != nil {
					t.Errorf("extend: %v", err)
				}
			}()
		}
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		close(release)
		wg.Wait()

		require.LessOrEqual(t, calls.Load(), int32(5))
		v, _, _ := session.Get(authsdk.KeyToken)
		require.Equal(t, "fresh", v)
		require.False(t, c.Countdown().Active)
	})

	t.Run("refresher failure keeps countdown", func(t *testing.T) {
		logout := &recordingLogout{}
		store, _, _ := newStore()
		require.NoError(t, store.Save(authsdk.ScopeSession, "old", authsdk.User{ID: 1}))
		boom := errors.New("refresh unavailable")

		c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Tick: time.Hour},
			authsdk.WithRefresher(authsdk.RefresherFunc(func(context.Context) (string, error) {
				return "", boom
			})),
		)
		defer c.Close()
		c.Activate(warningState())

		require.ErrorIs(t, c.Extend(context.Background()), boom)
		require.True(t, c.Countdown().Active)
		require.Equal(t, 60, c.Countdown().SecondsLeft)
	})
}

func TestCoordinatorLogoutNow(t *testing.T) {
	logout := &recordingLogout{}
	store, _, _ := newStore()
	c := authsdk.NewCoordinator(logout, store, authsdk.CoordinatorOptions{Tick: time.Hour})
	defer c.Close()

	c.Activate(warningState())
	c.LogoutNow()

	require.Equal(t, 1, logout.Count())
	require.False(t, c.Countdown().Active)
}
