package sessionguard

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionguard/pkg/conflict"
	"github.com/dmitrymomot/sessionguard/pkg/warning"
)

// Reason explains a sign-out.
type Reason string

const (
	ReasonUser             Reason = "user"
	ReasonIdleTimeout      Reason = "idle_timeout"
	ReasonAbsoluteTimeout  Reason = "absolute_timeout"
	ReasonOtherDevice      Reason = "other_device"
	ReasonLogoutEverywhere Reason = "logout_everywhere"
)

// Message is the toast shown after a sign-out for r.
func (r Reason) Message(cfg Config) string {
	switch r {
	case ReasonIdleTimeout:
		return fmt.Sprintf("You were signed out after %s of inactivity.", humanize(cfg.IdleTimeout))
	case ReasonAbsoluteTimeout:
		return fmt.Sprintf("Your session reached its maximum length of %s.", humanize(cfg.MaxAge))
	case ReasonOtherDevice:
		return "You chose to continue on your other device and were signed out here."
	case ReasonLogoutEverywhere:
		return "You were signed out on all devices."
	default:
		return "You have been signed out."
	}
}

// EventType identifies what changed.
type EventType string

const (
	EventWarning   EventType = "warning"
	EventConflict  EventType = "conflict"
	EventSignedOut EventType = "signed_out"
)

// Event is published to subscribers whenever the warning modal, the
// conflict modal or the sign-out state changes.
type Event struct {
	Type     EventType     `json:"type"`
	At       time.Time     `json:"at"`
	Warning  warning.View  `json:"warning"`
	Conflict conflict.View `json:"conflict"`
	Reason   Reason        `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
}

func humanize(d time.Duration) string {
	unit := func(n int64, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return unit(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return unit(int64(d/time.Minute), "minute")
	default:
		return unit(int64(d.Round(time.Second)/time.Second), "second")
	}
}
