package orch

import (
	"context"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/rs/zerolog/log"
)

// RequestCall starts a call from caller (sending on conn) to req.ToUID.
// Refusals that happen before a session exists are reported as call.failed and
// return nil; validation problems are returned.
func (o *Orchestrator) RequestCall(ctx context.Context, caller *domain.User, conn core.SignalConnection, req protocol.CallRequest) error {
	o.Metrics.CallRequest()
	target, err := domain.ParseUID(req.ToUID)
	if err != nil {
		return core.ValidationError("invalid uid format")
	}
	if target == caller.UID {
		return core.ValidationError("cannot call yourself")
	}
	media, ok := domain.ParseMediaKind(req.Media)
	if !ok {
		return core.ValidationError("invalid media kind")
	}

	id := o.newCallID()
	if o.Sessions.Busy(caller.UID, target) {
		o.refuse(caller, conn, id, target, protocol.ReasonUserBusy, domain.LogBusy)
		return nil
	}

	callee, calleeConn, online := o.Registry.Resolve(target)
	if !online {
		if o.knownUser(ctx, target) {
			o.refuse(caller, conn, id, target, protocol.ReasonUserOffline, domain.LogMissed)
		} else {
			o.refuse(caller, conn, id, target, protocol.ReasonUserOffline, "")
		}
		return nil
	}

	sess := core.NewSession(id, *caller, callee, media, o.now())

	var reserveErr error
	gone := false
	sess.Locked(func() {
		if reserveErr = o.Sessions.Reserve(sess); reserveErr != nil {
			return
		}
		// A disconnect that ran before Reserve found nothing to hang up.
		if !o.boundTo(target, calleeConn) || !o.boundTo(caller.UID, conn) {
			o.Sessions.Remove(id)
			gone = true
			return
		}
		o.send(target, calleeConn, protocol.CallIncoming{
			Type:     protocol.TypeCallIncoming,
			CallID:   id,
			FromUID:  caller.UID,
			FromName: caller.DisplayName,
			Media:    media,
		})
		o.send(caller.UID, conn, protocol.CallRinging{
			Type:   protocol.TypeCallRinging,
			CallID: id,
			ToUID:  target,
		})
		o.Timeouts.Arm(id, o.ringTimeout(), o.OnTimeout)
	})
	if reserveErr != nil {
		// Lost a race with another request for one of the parties.
		o.refuse(caller, conn, id, target, protocol.ReasonUserBusy, domain.LogBusy)
		return nil
	}
	if gone {
		o.refuse(caller, conn, id, target, protocol.ReasonUserOffline, domain.LogMissed)
		o.syncGauges()
		return nil
	}

	log.Info().Str("module", "orch").Str("call_id", string(id)).
		Str("caller", string(caller.UID)).Str("callee", string(target)).
		Str("media", string(media)).Msg("call initiated")
	o.syncGauges()
	return nil
}

func (o *Orchestrator) refuse(caller *domain.User, conn core.SignalConnection, id domain.CallID, target domain.UID, reason string, status domain.LogStatus) {
	log.Info().Str("module", "orch").Str("caller", string(caller.UID)).
		Str("callee", string(target)).Str("reason", reason).Msg("call refused")
	if status != "" {
		o.appendLog(domain.CallRecord{
			CallID:  id,
			Caller:  caller.UID,
			Callee:  target,
			Status:  status,
			EndedAt: o.now(),
		})
	}
	o.send(caller.UID, conn, protocol.CallFailed{
		Type:   protocol.TypeCallFailed,
		Reason: reason,
		CallID: id,
		ToUID:  target,
	})
}

// boundTo reports whether uid is still served by conn.
func (o *Orchestrator) boundTo(uid domain.UID, conn core.SignalConnection) bool {
	cur, ok := o.Registry.Lookup(uid)
	return ok && cur == conn
}

// knownUser asks the identity gateway whether uid is registered. Lookup
// failures count as known so that history is not silently lost.
func (o *Orchestrator) knownUser(ctx context.Context, uid domain.UID) bool {
	if o.Identity == nil {
		return true
	}
	ok, err := o.Identity.Exists(ctx, uid)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("uid", string(uid)).Msg("identity lookup")
		return true
	}
	return ok
}

func (o *Orchestrator) lookupSession(id domain.CallID) (*core.Session, error) {
	if id == "" {
		return nil, core.ValidationError("callId required")
	}
	sess, ok := o.Sessions.Get(id)
	if !ok {
		return nil, core.NotFoundError("call not found")
	}
	return sess, nil
}

// Accept moves a ringing call to accepted on behalf of its callee and tells
// the caller to start the offer.
func (o *Orchestrator) Accept(user *domain.User, id domain.CallID) error {
	sess, err := o.lookupSession(id)
	if err != nil {
		return err
	}
	err = sess.Transition(context.Background(), core.EventAccept, user.UID, o.now(), func(core.Outcome) {
		o.Timeouts.Disarm(id)
		o.sendTo(sess.Caller.UID, protocol.CallAccepted{
			Type:            protocol.TypeCallAccepted,
			CallID:          id,
			ShouldSendOffer: true,
		})
	})
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("call_id", string(id)).Msg("call accepted")
	return nil
}

// Reject declines a ringing call on behalf of its callee.
func (o *Orchestrator) Reject(user *domain.User, id domain.CallID, reason string) error {
	if reason == "" {
		reason = protocol.ReasonDeclined
	}
	sess, err := o.lookupSession(id)
	if err != nil {
		return err
	}
	err = sess.Transition(context.Background(), core.EventReject, user.UID, o.now(), func(out core.Outcome) {
		o.finish(sess, out)
		o.sendTo(sess.Caller.UID, protocol.CallRejected{
			Type:   protocol.TypeCallRejected,
			CallID: id,
			Reason: reason,
		})
	})
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("call_id", string(id)).Str("reason", reason).Msg("call rejected")
	return nil
}

// Hangup ends a ringing or accepted call from either side.
func (o *Orchestrator) Hangup(user *domain.User, id domain.CallID, reason string) error {
	if reason == "" {
		reason = protocol.ReasonUser
	}
	sess, err := o.lookupSession(id)
	if err != nil {
		return err
	}
	var duration int64
	err = sess.Transition(context.Background(), core.EventHangup, user.UID, o.now(), func(out core.Outcome) {
		duration = out.Duration
		o.finish(sess, out)
		peer, _ := sess.Peer(user.UID)
		o.sendTo(peer, protocol.CallEnded{
			Type:   protocol.TypeCallEnded,
			CallID: id,
			Reason: reason,
		})
	})
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("call_id", string(id)).
		Str("reason", reason).Int64("duration", duration).Msg("call ended")
	return nil
}

// OnTimeout is the scheduler callback. It only has an effect if the call is
// still ringing when it fires.
func (o *Orchestrator) OnTimeout(id domain.CallID) {
	sess, ok := o.Sessions.Get(id)
	if !ok {
		return
	}
	err := sess.Transition(context.Background(), core.EventTimeout, "", o.now(), func(out core.Outcome) {
		o.finish(sess, out)
		msg := protocol.CallTimeout{Type: protocol.TypeCallTimeout, CallID: id}
		o.sendTo(sess.Caller.UID, msg)
		o.sendTo(sess.Callee.UID, msg)
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("call_id", string(id)).Msg("timeout ignored")
		return
	}
	log.Info().Str("module", "orch").Str("call_id", string(id)).Msg("call timeout")
}

// finish runs under the session lock after a terminal transition.
func (o *Orchestrator) finish(sess *core.Session, out core.Outcome) {
	o.Timeouts.Disarm(sess.ID)
	o.Sessions.Remove(sess.ID)
	if status, ok := out.LogStatus(); ok {
		o.appendLog(domain.CallRecord{
			CallID:   sess.ID,
			Caller:   sess.Caller.UID,
			Callee:   sess.Callee.UID,
			Status:   status,
			Duration: out.Duration,
			Media:    sess.Media,
			EndedAt:  o.now(),
		})
	}
	o.syncGauges()
}
