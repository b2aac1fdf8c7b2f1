package authsdk

import (
	"fmt"
	"strconv"
)

// FormatRemaining renders whole seconds as "1h 2m 3s", "2m 3s" or "3s", and
// "Expired" for zero or less. The output is for display only.
func FormatRemaining(seconds int64) string {
	if seconds <= 0 {
		return "Expired"
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return strconv.FormatInt(s, 10) + "s"
	}
}

// Urgency is a display hint derived from the seconds remaining.
type Urgency int

const (
	UrgencyCalm     Urgency = iota // more than 15 minutes left
	UrgencyCaution                 // 15 minutes or less
	UrgencyCritical                // 5 minutes or less, or expired
)

func (u Urgency) String() string {
	switch u {
	case UrgencyCaution:
		return "caution"
	case UrgencyCritical:
		return "critical"
	default:
		return "calm"
	}
}

// UrgencyFor classifies seconds remaining.
func UrgencyFor(seconds int64) Urgency {
	switch {
	case seconds <= 300:
		return UrgencyCritical
	case seconds <= 900:
		return UrgencyCaution
	default:
		return UrgencyCalm
	}
}

// WarningMessage is the out-of-band notice shown when a session enters its
// warning window.
func WarningMessage(seconds int64) string {
	minutes := (seconds + 59) / 60
	plural := ""
	if minutes > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Your session will expire in %d minute%s. Please save your work and log in again.", minutes, plural)
}
