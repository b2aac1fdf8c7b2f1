package authsdk

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct-horse"`
}

// LoginResponse is returned by a successful POST /api/login.
type LoginResponse struct {
	// Message is a human-readable confirmation ("Login successful!")
	Message string `json:"message"`

	// Token is the signed bearer credential
	Token string `json:"token"`

	// User is the authenticated user's public profile
	User User `json:"user"`
}

// User is the public part of a user record, as stored under the "user" key.
type User struct {
	ID       int64  `json:"id" example:"42"`
	Email    string `json:"email" example:"ada@example.com"`
	Username string `json:"username" example:"ada"`
	FullName string `json:"fullName" example:"Ada Lovelace"`
	Role     string `json:"role" example:"user"`
}

// ============================================================================
// Profile Types
// ============================================================================

// ProfileResponse is returned by GET /api/profile.
type ProfileResponse struct {
	User User `json:"user"`

	// IssuedAt and Expiry are the credential's iat and exp in unix seconds
	IssuedAt int64 `json:"issuedAt"`
	Expiry   int64 `json:"expiry"`

	// LastLogins lists the most recent login log entries, newest first
	LastLogins []LoginEvent `json:"lastLogins,omitempty"`
}

// LoginEvent is one login log entry.
type LoginEvent struct {
	Action string `json:"action" example:"login"`
	At     int64  `json:"at"`
}

// ChangePasswordRequest is the body of PUT /api/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Health Check Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"` // only for /readyz
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Session State Types
// ============================================================================

// Status is the derived state of the stored credential.
type Status int

const (
	StatusNoToken Status = iota
	StatusValid
	StatusWarning
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusWarning:
		return "warning"
	case StatusExpired:
		return "expired"
	default:
		return "no_token"
	}
}

// State is recomputed by the Monitor on every check and never cached
// across checks.
type State struct {
	Status           Status
	SecondsRemaining int64
	Label            string // display only; never parse it back
}

// Expired reports whether the session is unusable. An absent credential
// counts as expired.
func (s State) Expired() bool {
	return s.Status == StatusExpired || s.Status == StatusNoToken
}

// CountdownState is the Coordinator's grace-period timer.
type CountdownState struct {
	Active      bool
	SecondsLeft int
}
