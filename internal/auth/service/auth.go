package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

// MinPasswordLength applies to login attempts and new passwords alike.
const MinPasswordLength = 6

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrPasswordTooShort   = errors.New("password_too_short")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrIncorrectPassword  = errors.New("incorrect_password")
)

type AuthService struct {
	Store  store.Store
	Issuer *TokenIssuer
	Now    func() time.Time
}

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Token  string
	Claims jwtx.Claims
	User   domain.User
}

// Login checks email and password and issues a credential.
//
// Errors:
//   - ErrInvalidRequest when email or password is missing
//   - ErrPasswordTooShort when password is under MinPasswordLength
//   - ErrInvalidCredentials for an unknown email or a wrong password, with
//     no hint as to which
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidRequest
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("login: lookup user: %w", err)
		}
		// Unknown emails pay for one argon2 check too.
		_ = cryptox.VerifyPassword(password, dummyHash())
		log.Info("login rejected", slog.String("reason", "unknown_email"))
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login rejected", slog.String("reason", "password_mismatch"), slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.Issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	if err := s.Store.LoginLog().Record(ctx, domain.LoginEvent{
		UserID: user.ID,
		Action: domain.ActionLogin,
		At:     s.now(),
	}); err != nil {
		log.Warn("failed to record login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	log.Info("login succeeded",
		slog.Int64("user_id", user.ID),
		slog.Int64("expires_at", claims.ExpiryUnix()),
	)
	return &LoginResult{Token: token, Claims: claims, User: user}, nil
}

// ChangePassword replaces the password of userID after checking current.
// The hash update and the audit row commit together.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return ErrInvalidRequest
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if cryptox.VerifyPassword(current, user.PasswordHash) != nil {
		return ErrIncorrectPassword
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.LoginLog().Record(ctx, domain.LoginEvent{
			UserID: userID,
			Action: domain.ActionPasswordChange,
			At:     s.now(),
		})
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.Int64("user_id", userID))
	return nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = cryptox.HashPassword("timing-equaliser")
	})
	return dummy
}
