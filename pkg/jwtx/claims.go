package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime applied to credentials at login. There is
// no refresh flow, so a user re-authenticates once this window closes.
const DefaultTokenTTL = 24 * time.Hour

// Identity is the verified user information carried inside a credential.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Claims are the credential claims shared by the issuer, the verification
// gate and client-side session monitoring.
type Claims struct {
	jwt.RegisteredClaims
	Identity
}

// NewClaims builds claims for identity, issued at now and expiring after ttl.
func NewClaims(id Identity, issuer string, ttl time.Duration, now time.Time) Claims {
	// Numeric dates are whole seconds on the wire, truncate here so the
	// claims we hand back match what a decode returns.
	now = now.Truncate(time.Second)

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Identity: id,
	}
}

// IssuedAtUnix returns the iat claim in unix seconds, or 0 when absent.
func (c *Claims) IssuedAtUnix() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// ExpiryUnix returns the exp claim in unix seconds, or 0 when absent.
func (c *Claims) ExpiryUnix() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// SecondsRemaining is the whole number of seconds between now and expiry.
// Zero or negative means the credential has expired.
func (c *Claims) SecondsRemaining(now time.Time) int64 {
	return c.ExpiryUnix() - now.Unix()
}

// ExpiredAt reports whether the credential is expired at now (exp <= now).
func (c *Claims) ExpiredAt(now time.Time) bool {
	return c.SecondsRemaining(now) <= 0
}

// ValidateLifetime enforces exp strictly after iat.
func (c *Claims) ValidateLifetime() error {
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return ErrInvalidClaim
	}
	if c.ExpiryUnix() <= c.IssuedAtUnix() {
		return ErrInvalidClaim
	}
	return nil
}

// ValidateSubject checks the subject matches the embedded user id.
func (c *Claims) ValidateSubject() error {
	if c.Subject == "" || c.Subject != strconv.FormatInt(c.UserID, 10) {
		return ErrInvalidClaim
	}
	return nil
}
