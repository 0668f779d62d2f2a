package core

import (
	"time"

	"github.com/dkeye/Call/internal/domain"
)

// Event is a session state machine input.
type Event string

const (
	EventAccept  Event = "accept"
	EventReject  Event = "reject"
	EventHangup  Event = "hangup"
	EventTimeout Event = "timeout"
)

// Outcome describes a transition that has just been applied.
type Outcome struct {
	From     domain.CallStatus
	To       domain.CallStatus
	Actor    domain.UID
	Duration int64
}

// LogStatus maps a terminal outcome to the status written to call history.
func (o Outcome) LogStatus() (domain.LogStatus, bool) {
	switch o.To {
	case domain.StatusRejected:
		return domain.LogDeclined, true
	case domain.StatusTimedOut:
		return domain.LogMissed, true
	case domain.StatusEnded:
		if o.From == domain.StatusAccepted {
			return domain.LogAccepted, true
		}
		return domain.LogMissed, true
	}
	return "", false
}

// SessionView is a read-only view for APIs.
type SessionView struct {
	CallID     domain.CallID     `json:"callId"`
	Caller     domain.UID        `json:"caller_uid"`
	Callee     domain.UID        `json:"callee_uid"`
	Media      domain.MediaKind  `json:"media"`
	Status     domain.CallStatus `json:"status"`
	CreatedAt  time.Time         `json:"start_time"`
	AcceptedAt *time.Time        `json:"accept_time,omitempty"`
}
