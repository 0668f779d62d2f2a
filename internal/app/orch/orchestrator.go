package orch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Call/internal/app"
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/metrics"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRingTimeout = 30 * time.Second
	DefaultLogTimeout  = 5 * time.Second
)

// Orchestrator owns the call lifecycle. Connection handles never leave it:
// adapters hand in the connection that sent a message and get errors back.
type Orchestrator struct {
	Registry *app.Registry
	Sessions *app.SessionTable
	Timeouts *app.Scheduler
	Policy   app.Policy
	CallLog  core.CallLog
	Identity core.IdentityGateway
	Metrics  *metrics.Metrics

	RingTimeout time.Duration
	LogTimeout  time.Duration
	Now         func() time.Time
	NewCallID   func() domain.CallID

	logs sync.WaitGroup
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) ringTimeout() time.Duration {
	if o.RingTimeout > 0 {
		return o.RingTimeout
	}
	return DefaultRingTimeout
}

func (o *Orchestrator) newCallID() domain.CallID {
	if o.NewCallID != nil {
		return o.NewCallID()
	}
	return domain.CallID(uuid.NewString())
}

// Wait blocks until pending call log writes finish.
func (o *Orchestrator) Wait() {
	o.logs.Wait()
}

// ActiveCalls lists in-flight sessions.
func (o *Orchestrator) ActiveCalls() []core.SessionView {
	return o.Sessions.Snapshot()
}

// send encodes v and queues it on conn without blocking. A full queue is
// handed to the policy.
func (o *Orchestrator) send(uid domain.UID, conn core.SignalConnection, v any) {
	f, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return
	}
	err = conn.TrySend(f)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("module", "orch").Str("uid", string(uid)).Msg("send failed")
	if o.Policy == nil || !errors.Is(err, core.ErrBackpressure) {
		return
	}
	switch o.Policy.OnBackPressure(uid, conn) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("uid", string(uid)).Msg("kicking slow connection")
		conn.Close()
	case app.DropFrame, app.NoAction:
	}
}

// sendTo delivers v to uid's live connection, if any.
func (o *Orchestrator) sendTo(uid domain.UID, v any) bool {
	conn, ok := o.Registry.Lookup(uid)
	if !ok {
		return false
	}
	o.send(uid, conn, v)
	return true
}

// appendLog records a terminal outcome. Failures are logged, never returned.
func (o *Orchestrator) appendLog(rec domain.CallRecord) {
	o.Metrics.CallOutcome(rec.Status)
	if o.CallLog == nil {
		return
	}
	timeout := o.LogTimeout
	if timeout <= 0 {
		timeout = DefaultLogTimeout
	}
	o.logs.Add(1)
	go func() {
		defer o.logs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := o.CallLog.Append(ctx, rec); err != nil {
			log.Error().Err(err).Str("module", "orch").
				Str("caller", string(rec.Caller)).Str("callee", string(rec.Callee)).
				Str("status", string(rec.Status)).Msg("call log append failed")
		}
	}()
}

func (o *Orchestrator) syncGauges() {
	o.Metrics.SetOnline(o.Registry.Online())
	o.Metrics.SetActiveCalls(o.Sessions.Len())
}
