package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/store"
)

// DefaultLoginLogRetention is how long login audit rows are kept.
const DefaultLoginLogRetention = 30 * 24 * time.Hour

// HousekeepingService periodically prunes the login log so it does not grow
// without bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Non-positive
// interval and retention fall back to 1h and DefaultLoginLogRetention.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultLoginLogRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop shuts down the worker and blocks until any in-progress cleanup
// finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce prunes login log rows older than the retention window.
func (s *HousekeepingService) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.Now().Add(-s.Retention)
	return s.Store.LoginLog().DeleteBefore(ctx, cutoff)
}

func (s *HousekeepingService) cleanup() {
	n, err := s.RunOnce(context.Background())
	if err != nil {
		s.Logger.Error("failed to prune login log", slog.Any("error", err))
		return
	}
	s.Logger.Info("housekeeping cleanup completed", slog.Int64("login_log_deleted", n))
}
