package orch

import (
	"context"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Authenticate binds user to conn. A connection previously bound to the same
// identity is told it was superseded and closed; its own disconnect will not
// touch the fresh binding.
func (o *Orchestrator) Authenticate(ctx context.Context, user *domain.User, conn core.SignalConnection) {
	prev, had := o.Registry.Register(user, conn)
	if had {
		log.Info().Str("module", "orch").Str("uid", string(user.UID)).Msg("closing superseded connection")
		o.send(user.UID, prev, protocol.Error{
			Type:    protocol.TypeError,
			Code:    string(core.KindAuth),
			Message: protocol.ReasonSuperseded,
		})
		prev.Close()
	}
	o.touch(ctx, user.UID)
	o.syncGauges()
}

// Touch records that uid was seen, when the identity gateway supports it.
func (o *Orchestrator) Touch(ctx context.Context, uid domain.UID) {
	o.touch(ctx, uid)
}

func (o *Orchestrator) touch(ctx context.Context, uid domain.UID) {
	pt, ok := o.Identity.(core.PresenceTracker)
	if !ok {
		return
	}
	if err := pt.Touch(ctx, uid); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("uid", string(uid)).Msg("touch last seen")
	}
}

// OnDisconnect tears down everything conn owned. Sessions of the identity are
// hung up with reason disconnect unless a fresher connection took over.
func (o *Orchestrator) OnDisconnect(user *domain.User, conn core.SignalConnection) {
	if user == nil {
		return
	}
	if !o.Registry.Unregister(user.UID, conn) {
		log.Info().Str("module", "orch").Str("uid", string(user.UID)).Msg("stale connection closed, keeping sessions")
		return
	}
	for _, sess := range o.Sessions.ByIdentity(user.UID) {
		if err := o.Hangup(user, sess.ID, protocol.ReasonDisconnect); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("call_id", string(sess.ID)).Msg("disconnect hangup skipped")
		}
	}
	o.syncGauges()
}
