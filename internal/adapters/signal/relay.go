package signal

import (
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/protocol"
)

func (ctl *SignalWSController) handleRelay(st *connState, kind string, data []byte) error {
	var p protocol.Relay
	if err := protocol.Decode(kind, data, &p); err != nil {
		return err
	}
	switch kind {
	case protocol.TypeCallOffer, protocol.TypeCallAnswer:
		if len(p.SDP) == 0 {
			return core.ProtocolError(kind + " requires sdp")
		}
	case protocol.TypeCallICE:
		if len(p.Candidate) == 0 {
			return core.ProtocolError(kind + " requires candidate")
		}
	}
	return ctl.Orch.Relay(st.user, kind, p)
}
