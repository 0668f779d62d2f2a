package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	defer c.conn.Close()

	var ping <-chan time.Time
	if ctl.opts.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, st *connState) {
	defer func() {
		log.Info().Str("module", "signal").Str("trace", st.trace).Str("uid", st.uid()).Msg("readPump closing")
		ctl.Orch.OnDisconnect(st.user, st.conn)
		cancel()
		st.conn.Close()
	}()

	if ctl.opts.PingPeriod > 0 {
		pongWait := ctl.opts.PingPeriod * 10 / 9
		_ = st.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		st.conn.conn.SetPongHandler(func(string) error {
			return st.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("trace", st.trace).Msg("readPump ctx done")
			return
		default:
			_, data, err := st.conn.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("trace", st.trace).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, st, data)
		}
	}
}

// handleSignal is the protocol dispatcher: one frame in, at most one handler
// call, errors reported on the same connection which stays open.
func (ctl *SignalWSController) handleSignal(ctx context.Context, st *connState, data []byte) {
	kind, err := protocol.Peek(data)
	if err != nil {
		ctl.sendError(st, err)
		return
	}
	if !protocol.Known(kind) {
		ctl.Metrics.Frame("unknown")
		ctl.sendError(st, core.ProtocolError("unknown message type: "+kind))
		return
	}
	ctl.Metrics.Frame(kind)

	if protocol.RequiresAuth(kind) && st.user == nil {
		ctl.sendError(st, core.AuthError("not authenticated"))
		return
	}

	switch kind {
	case protocol.TypeAuth:
		err = ctl.handleAuth(ctx, st, data)
	case protocol.TypePing:
		ctl.handlePing(st)
	case protocol.TypeWhoAmI:
		ctl.handleWhoAmI(st)
	case protocol.TypePresenceUpdate:
		err = ctl.handlePresence(ctx, st, data)
	case protocol.TypeCallRequest:
		err = ctl.handleCallRequest(ctx, st, data)
	case protocol.TypeCallAccept:
		err = ctl.handleCallAccept(st, data)
	case protocol.TypeCallReject:
		err = ctl.handleCallReject(st, data)
	case protocol.TypeCallHangup:
		err = ctl.handleCallHangup(st, data)
	case protocol.TypeCallOffer, protocol.TypeCallAnswer, protocol.TypeCallICE:
		err = ctl.handleRelay(st, kind, data)
	}
	if err != nil {
		ctl.sendError(st, err)
	}
}

func (ctl *SignalWSController) sendError(st *connState, err error) {
	kind := core.KindOf(err)
	if kind == "" {
		log.Error().Err(err).Str("module", "signal").Str("uid", st.uid()).Msg("handler failed")
		ctl.Metrics.Error("internal")
	} else {
		log.Debug().Err(err).Str("module", "signal").Str("uid", st.uid()).Msg("error frame")
		ctl.Metrics.Error(string(kind))
	}
	ctl.sendJSON(st.conn, protocol.ErrorFrame(err))
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
