package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tabsession/internal/auth/domain"
	"github.com/aussiebroadwan/tabsession/internal/auth/store"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
)

type UserService struct {
	Store store.Store
}

// NewUser is the input to CreateUser. Password is plaintext and is hashed
// before it reaches the store.
type NewUser struct {
	Email    string
	Password string
	Username string
	FullName string
	Role     string
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// CreateUser validates and stores a new user. A taken email returns
// store.ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return domain.User{}, ErrInvalidRequest
	}
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}
	if in.Username == "" {
		in.Username, _, _ = strings.Cut(in.Email, "@")
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: hash: %w", err)
	}

	u := domain.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		Role:         in.Role,
		PasswordHash: hash,
	}
	id, err := s.Store.Users().CreateUser(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, id)
}

// RecentLogins lists the newest audit rows for userID.
func (s *UserService) RecentLogins(ctx context.Context, userID int64, limit int) ([]domain.LoginEvent, error) {
	return s.Store.LoginLog().ListRecent(ctx, userID, limit)
}
