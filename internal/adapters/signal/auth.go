package signal

import (
	"context"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleAuth(ctx context.Context, st *connState, data []byte) error {
	var p protocol.Auth
	if err := protocol.Decode(protocol.TypeAuth, data, &p); err != nil {
		return err
	}
	if p.Token == "" {
		return core.AuthError("token required")
	}
	if ctl.Identity == nil {
		return core.AuthError("authentication unavailable")
	}

	vctx, cancel := context.WithTimeout(ctx, ctl.opts.AuthTimeout)
	defer cancel()
	user, err := ctl.Identity.Verify(vctx, p.Token)
	if err != nil {
		if core.KindOf(err) == "" {
			log.Error().Err(err).Str("module", "signal").Str("trace", st.trace).Msg("verify token")
			return core.AuthError("authentication failed")
		}
		return err
	}

	// Re-auth as someone else releases the old identity first.
	if st.user != nil && st.user.UID != user.UID {
		ctl.Orch.OnDisconnect(st.user, st.conn)
	}
	st.user = user

	ctl.sendJSON(st.conn, ctl.authSuccess(st))
	ctl.Orch.Authenticate(ctx, user, st.conn)

	log.Info().Str("module", "signal").Str("trace", st.trace).Str("uid", st.uid()).Msg("authenticated")
	return nil
}

func (ctl *SignalWSController) authSuccess(st *connState) protocol.AuthSuccess {
	return protocol.AuthSuccess{
		Type: protocol.TypeAuthSuccess,
		User: protocol.UserInfo{
			UID:         st.user.UID,
			DisplayName: st.user.DisplayName,
		},
		ICEServers: ctl.opts.ICEServers,
	}
}
