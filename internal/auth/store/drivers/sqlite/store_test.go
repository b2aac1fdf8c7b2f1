package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func createUser(t *testing.T, s store.Store, email string) int64 {
	t.Helper()
	id, err := s.Users().CreateUser(context.Background(), domain.User{
		Email:        email,
		Username:     "ada",
		FullName:     "Ada Lovelace",
		PasswordHash: "argon2id$dummy",
	})
	require.NoError(t, err)
	return id
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	id := createUser(t, s, "ada@example.com")
	require.Positive(t, id)

	t.Run("lookup by id", func(t *testing.T) {
		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", u.Email)
		require.Equal(t, "Ada Lovelace", u.FullName)
		require.Equal(t, domain.DefaultRole, u.Role)
		require.False(t, u.CreatedAt.IsZero())
	})

	t.Run("lookup by email ignores case", func(t *testing.T) {
		u, err := s.Users().GetUserByEmail(ctx, " ADA@example.COM ")
		require.NoError(t, err)
		require.Equal(t, id, u.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, id+100)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, domain.User{Email: "Ada@Example.com", Username: "x", PasswordHash: "h"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, id, "argon2id$new"))
		u, err := s.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "argon2id$new", u.PasswordHash)

		require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, id+100, "h"), store.ErrNotFound)
	})

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestLoginLog(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := createUser(t, s, "ada@example.com")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []domain.LoginAction{domain.ActionLogin, domain.ActionPasswordChange, domain.ActionLogin} {
		require.NoError(t, s.LoginLog().Record(ctx, domain.LoginEvent{
			UserID: id,
			Action: action,
			At:     base.Add(time.Duration(i) * time.Hour),
		}))
	}

	events, err := s.LoginLog().ListRecent(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, base.Add(2*time.Hour), events[0].At)
	require.Equal(t, domain.ActionPasswordChange, events[1].Action)
	require.False(t, events[0].ID.IsZero())

	n, err := s.LoginLog().DeleteBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	events, err = s.LoginLog().ListRecent(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	t.Run("unknown user violates foreign key", func(t *testing.T) {
		err := s.LoginLog().Record(ctx, domain.LoginEvent{UserID: id + 100, Action: domain.ActionLogin})
		require.Error(t, err)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Users().CreateUser(ctx, domain.User{Email: "tx@example.com", Username: "tx", PasswordHash: "h"})
			require.NoError(t, err)
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			id, err := tx.Users().CreateUser(ctx, domain.User{Email: "tx@example.com", Username: "tx", PasswordHash: "h"})
			if err != nil {
				return err
			}
			return tx.LoginLog().Record(ctx, domain.LoginEvent{UserID: id, Action: domain.ActionLogin})
		})
		require.NoError(t, err)

		u, err := s.Users().GetUserByEmail(ctx, "tx@example.com")
		require.NoError(t, err)
		events, err := s.LoginLog().ListRecent(ctx, u.ID, 5)
		require.NoError(t, err)
		require.Len(t, events, 1)
	})

	t.Run("nested transactions refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}

func TestFileStoreMigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.db")

	s, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	createUser(t, s, "ada@example.com")
	require.NoError(t, s.Close())

	s, err = sqlite.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))

	_, err = s.Users().GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
}
