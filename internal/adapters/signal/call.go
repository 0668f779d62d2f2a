package signal

import (
	"context"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCallRequest(ctx context.Context, st *connState, data []byte) error {
	var p protocol.CallRequest
	if err := protocol.Decode(protocol.TypeCallRequest, data, &p); err != nil {
		return err
	}
	if !ctl.limiter.Allow(st.user.UID) {
		log.Warn().Str("module", "signal").Str("uid", st.uid()).Msg("call request rate limited")
		return core.ConflictError("too many call requests")
	}
	return ctl.Orch.RequestCall(ctx, st.user, st.conn, p)
}

func (ctl *SignalWSController) handleCallAccept(st *connState, data []byte) error {
	var p protocol.CallAccept
	if err := protocol.Decode(protocol.TypeCallAccept, data, &p); err != nil {
		return err
	}
	return ctl.Orch.Accept(st.user, p.CallID)
}

func (ctl *SignalWSController) handleCallReject(st *connState, data []byte) error {
	var p protocol.CallReject
	if err := protocol.Decode(protocol.TypeCallReject, data, &p); err != nil {
		return err
	}
	return ctl.Orch.Reject(st.user, p.CallID, p.Reason)
}

func (ctl *SignalWSController) handleCallHangup(st *connState, data []byte) error {
	var p protocol.CallHangup
	if err := protocol.Decode(protocol.TypeCallHangup, data, &p); err != nil {
		return err
	}
	return ctl.Orch.Hangup(st.user, p.CallID, p.Reason)
}
