package domain

import "time"

type CallID string

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// ParseMediaKind maps an empty kind to video, matching what clients send by default.
func ParseMediaKind(raw string) (MediaKind, bool) {
	switch MediaKind(raw) {
	case "":
		return MediaVideo, true
	case MediaAudio, MediaVideo:
		return MediaKind(raw), true
	}
	return "", false
}

// CallStatus is the signaling state of one call attempt.
type CallStatus string

const (
	StatusRinging  CallStatus = "ringing"
	StatusAccepted CallStatus = "accepted"
	StatusEnded    CallStatus = "ended"
	StatusRejected CallStatus = "rejected"
	StatusTimedOut CallStatus = "timed_out"
)

// LogStatus is the outcome written to call history.
type LogStatus string

const (
	LogAccepted LogStatus = "accepted"
	LogMissed   LogStatus = "missed"
	LogDeclined LogStatus = "declined"
	LogBusy     LogStatus = "busy"
)

// CallRecord is one terminal call outcome handed to the call log.
type CallRecord struct {
	CallID   CallID    `json:"call_id,omitempty"`
	Caller   UID       `json:"caller_uid"`
	Callee   UID       `json:"callee_uid"`
	Status   LogStatus `json:"status"`
	Duration int64     `json:"duration_seconds"`
	Media    MediaKind `json:"media,omitempty"`
	EndedAt  time.Time `json:"end_time"`
}
