package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this
// and expose sub-repositories so a transaction can hand out the same repos
// scoped to itself.
type Store interface {
	Users() Users
	LoginLog() LoginLog

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn
	// rolls back, nil commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns the assigned id. ErrAlreadyExists when
	// the email is taken.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	IsEmpty(ctx context.Context) (bool, error)
}

type LoginLog interface {
	Record(ctx context.Context, e domain.LoginEvent) error

	// ListRecent returns up to limit events for a user, newest first.
	ListRecent(ctx context.Context, userID int64, limit int) ([]domain.LoginEvent, error)

	// DeleteBefore removes events older than cutoff and reports how many
	// rows went.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
