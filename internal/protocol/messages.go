// Package protocol defines the JSON control messages exchanged over the
// signaling WebSocket. Every frame carries a "type" discriminator.
package protocol

import (
	"encoding/json"

	"github.com/dkeye/Call/internal/domain"
	"github.com/pion/webrtc/v4"
)

const (
	TypeAuth           = "auth"
	TypeAuthSuccess    = "auth.success"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeWhoAmI         = "whoami"
	TypePresenceUpdate = "presence.update"
	TypeCallRequest    = "call.request"
	TypeCallRinging    = "call.ringing"
	TypeCallIncoming   = "call.incoming"
	TypeCallAccept     = "call.accept"
	TypeCallAccepted   = "call.accepted"
	TypeCallReject     = "call.reject"
	TypeCallRejected   = "call.rejected"
	TypeCallOffer      = "call.offer"
	TypeCallAnswer     = "call.answer"
	TypeCallICE        = "call.ice"
	TypeCallHangup     = "call.hangup"
	TypeCallEnded      = "call.ended"
	TypeCallTimeout    = "call.timeout"
	TypeCallFailed     = "call.failed"
	TypeError          = "error"
)

const (
	ReasonUserOffline = "user_offline"
	ReasonUserBusy    = "user_busy"
	ReasonDeclined    = "declined"
	ReasonUser        = "user"
	ReasonDisconnect  = "disconnect"
	ReasonSuperseded  = "superseded"
)

// Envelope is decoded first to route a frame.
type Envelope struct {
	Type string `json:"type"`
}

// Client -> server.

type Auth struct {
	Token string `json:"token"`
}

type PresenceUpdate struct {
	Status domain.PresenceStatus `json:"status"`
}

type CallRequest struct {
	ToUID string `json:"to_uid"`
	Media string `json:"media,omitempty"`
}

type CallAccept struct {
	CallID domain.CallID `json:"callId"`
}

type CallReject struct {
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason,omitempty"`
}

type CallHangup struct {
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason,omitempty"`
}

// Relay covers call.offer, call.answer and call.ice. Payloads stay opaque.
type Relay struct {
	CallID    domain.CallID   `json:"callId"`
	ToUID     string          `json:"to_uid"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Server -> client.

type UserInfo struct {
	UID         domain.UID `json:"uid"`
	DisplayName string     `json:"displayName"`
}

type AuthSuccess struct {
	Type       string             `json:"type"`
	User       UserInfo           `json:"user"`
	ICEServers []webrtc.ICEServer `json:"iceServers,omitempty"`
}

type CallRinging struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
	ToUID  domain.UID    `json:"to_uid"`
}

type CallIncoming struct {
	Type     string           `json:"type"`
	CallID   domain.CallID    `json:"callId"`
	FromUID  domain.UID       `json:"from_uid"`
	FromName string           `json:"from_name"`
	Media    domain.MediaKind `json:"media"`
}

type CallAccepted struct {
	Type            string        `json:"type"`
	CallID          domain.CallID `json:"callId"`
	ShouldSendOffer bool          `json:"shouldSendOffer"`
}

type CallRejected struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason"`
}

type CallEnded struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason"`
}

type CallTimeout struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
}

type CallFailed struct {
	Type   string        `json:"type"`
	Reason string        `json:"reason"`
	CallID domain.CallID `json:"callId,omitempty"`
	ToUID  domain.UID    `json:"to_uid,omitempty"`
}

type Relayed struct {
	Type      string          `json:"type"`
	CallID    domain.CallID   `json:"callId"`
	FromUID   domain.UID      `json:"from_uid"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type Pong struct {
	Type string `json:"type"`
}
