package signal

import (
	"context"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(st *connState) {
	ctl.sendJSON(st.conn, protocol.Pong{Type: protocol.TypePong})
}

func (ctl *SignalWSController) handleWhoAmI(st *connState) {
	ctl.sendJSON(st.conn, ctl.authSuccess(st))
}

func (ctl *SignalWSController) handlePresence(ctx context.Context, st *connState, data []byte) error {
	var p protocol.PresenceUpdate
	if err := protocol.Decode(protocol.TypePresenceUpdate, data, &p); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return core.ValidationError("invalid presence status")
	}
	ctl.Orch.Touch(ctx, st.user.UID)
	log.Debug().Str("module", "signal").Str("uid", st.uid()).Str("status", string(p.Status)).Msg("presence update")
	return nil
}
