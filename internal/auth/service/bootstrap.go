package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

var ErrBootstrapSpec = errors.New("invalid bootstrap user spec")

// ParseBootstrapUsers reads the AUTH_BOOTSTRAP_USERS format:
//
//	email:password:username:Full Name:role;email2:...
//
// Only email and password are required. Empty entries are skipped.
func ParseBootstrapUsers(spec string) ([]NewUser, error) {
	var out []NewUser
	for i, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.SplitN(entry, ":", 5)
		if len(fields) < 2 || strings.TrimSpace(fields[0]) == "" || fields[1] == "" {
			return nil, fmt.Errorf("%w: entry %d needs at least email:password", ErrBootstrapSpec, i+1)
		}

		u := NewUser{
			Email:    strings.TrimSpace(fields[0]),
			Password: fields[1],
		}
		if len(fields) > 2 {
			u.Username = strings.TrimSpace(fields[2])
		}
		if len(fields) > 3 {
			u.FullName = strings.TrimSpace(fields[3])
		}
		if len(fields) > 4 {
			u.Role = strings.TrimSpace(fields[4])
		}
		out = append(out, u)
	}
	return out, nil
}

// EnsureUsers creates each user whose email is not yet registered and
// reports how many were created. Existing accounts are left untouched.
func (s *UserService) EnsureUsers(ctx context.Context, users []NewUser) (int, error) {
	l := slogx.FromContext(ctx)

	created := 0
	for _, in := range users {
		_, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
		if err == nil {
			l.Debug("bootstrap user already present", slog.String("email", in.Email))
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, err
		}

		u, err := s.CreateUser(ctx, in)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("bootstrap %s: %w", in.Email, err)
		}
		l.Info("bootstrap user created", slog.Int64("user_id", u.ID), slog.String("role", u.Role))
		created++
	}
	return created, nil
}
