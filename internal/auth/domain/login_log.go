package domain

import (
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/idx"
)

type LoginAction string

const (
	ActionLogin          LoginAction = "login"
	ActionPasswordChange LoginAction = "password_change"
)

// LoginEvent is one row of the per-user audit trail written on successful
// authentication events.
type LoginEvent struct {
	ID     idx.ID
	UserID int64
	Action LoginAction
	At     time.Time
}
