package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Call/internal/core"
)

// Known reports whether kind is a client -> server message this server handles.
func Known(kind string) bool {
	switch kind {
	case TypeAuth, TypePing, TypeWhoAmI, TypePresenceUpdate,
		TypeCallRequest, TypeCallAccept, TypeCallReject, TypeCallHangup,
		TypeCallOffer, TypeCallAnswer, TypeCallICE:
		return true
	}
	return false
}

// RequiresAuth reports whether kind may only be sent by an authenticated connection.
func RequiresAuth(kind string) bool {
	return kind != TypeAuth && kind != TypePing
}

// Peek extracts the type discriminator.
func Peek(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", core.ProtocolError("invalid message format")
	}
	if env.Type == "" {
		return "", core.ProtocolError("missing message type")
	}
	return env.Type, nil
}

// Decode unmarshals data into v, mapping failures to ProtocolError.
func Decode(kind string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return core.ProtocolError(fmt.Sprintf("malformed %s payload", kind))
	}
	return nil
}

// Encode marshals an outbound message into a frame.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

// ErrorFrame builds the error message reported for err.
func ErrorFrame(err error) Error {
	return Error{
		Type:    TypeError,
		Code:    string(core.KindOf(err)),
		Message: core.Message(err),
	}
}
