package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
)

type loginLogRepo struct {
	q *queries
}

func (r *loginLogRepo) Record(ctx context.Context, e domain.LoginEvent) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.ID.IsZero() {
		e.ID = idx.NewAt(e.At)
	}
	return r.q.InsertLoginEvent(ctx, loginEventRow{
		ID:     e.ID.String(),
		UserID: e.UserID,
		Action: string(e.Action),
		At:     toMillis(e.At),
	})
}

func (r *loginLogRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.LoginEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.q.ListLoginEvents(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LoginEvent, 0, len(rows))
	for _, row := range rows {
		id, err := idx.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("login_log %q: %w", row.ID, err)
		}
		out = append(out, domain.LoginEvent{
			ID:     id,
			UserID: row.UserID,
			Action: domain.LoginAction(row.Action),
			At:     fromMillis(row.At),
		})
	}
	return out, nil
}

func (r *loginLogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteLoginEventsBefore(ctx, toMillis(cutoff))
}
