package domain

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	FullName     string
	Role         string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultRole is assigned when a user is created without one.
const DefaultRole = "user"
