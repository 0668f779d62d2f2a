package orch

import (
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/protocol"
)

// Relay forwards an offer, answer or ICE candidate to its target unchanged.
// It never changes session state; an unreachable target is an error for the
// sender only.
func (o *Orchestrator) Relay(user *domain.User, kind string, msg protocol.Relay) error {
	target, err := domain.ParseUID(msg.ToUID)
	if err != nil {
		return core.ValidationError("invalid uid format")
	}
	if msg.CallID == "" {
		return core.ValidationError("callId required")
	}
	// A known call id pins the pair; unknown ids are forwarded as-is.
	if sess, ok := o.Sessions.Get(msg.CallID); ok {
		peer, isParty := sess.Peer(user.UID)
		if !isParty || peer != target {
			return core.NotFoundError("call not found")
		}
	}

	conn, ok := o.Registry.Lookup(target)
	if !ok {
		return core.NotFoundError("target user not connected")
	}
	o.send(target, conn, protocol.Relayed{
		Type:      kind,
		CallID:    msg.CallID,
		FromUID:   user.UID,
		SDP:       msg.SDP,
		Candidate: msg.Candidate,
	})
	o.Metrics.Relayed(kind)
	return nil
}
