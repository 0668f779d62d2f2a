package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Call/internal/domain"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"
)

// Session is one call attempt. All transitions of a session are serialized by
// its own lock, so unrelated calls never contend.
type Session struct {
	ID        domain.CallID
	Caller    domain.User
	Callee    domain.User
	Media     domain.MediaKind
	CreatedAt time.Time

	mu         sync.Mutex
	machine    *fsm.FSM
	acceptedAt time.Time
}

func NewSession(id domain.CallID, caller, callee domain.User, media domain.MediaKind, now time.Time) *Session {
	s := &Session{
		ID:        id,
		Caller:    caller,
		Callee:    callee,
		Media:     media,
		CreatedAt: now,
	}
	ringing := string(domain.StatusRinging)
	s.machine = fsm.NewFSM(
		ringing,
		fsm.Events{
			{Name: string(EventAccept), Src: []string{ringing}, Dst: string(domain.StatusAccepted)},
			{Name: string(EventReject), Src: []string{ringing}, Dst: string(domain.StatusRejected)},
			{Name: string(EventTimeout), Src: []string{ringing}, Dst: string(domain.StatusTimedOut)},
			{Name: string(EventHangup), Src: []string{ringing, string(domain.StatusAccepted)}, Dst: string(domain.StatusEnded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debug().Str("module", "core.session").Str("call_id", string(id)).
					Str("event", e.Event).Str("from", e.Src).Str("to", e.Dst).Msg("transition")
			},
		},
	)
	return s
}

// Role reports which side uid plays in the call.
func (s *Session) Role(uid domain.UID) domain.Role {
	switch uid {
	case s.Caller.UID:
		return domain.RoleCaller
	case s.Callee.UID:
		return domain.RoleCallee
	}
	return domain.RoleNone
}

// Peer returns the counterpart of uid.
func (s *Session) Peer(uid domain.UID) (domain.UID, bool) {
	switch s.Role(uid) {
	case domain.RoleCaller:
		return s.Callee.UID, true
	case domain.RoleCallee:
		return s.Caller.UID, true
	}
	return "", false
}

func (s *Session) Status() domain.CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CallStatus(s.machine.Current())
}

// Locked runs fn while holding the session lock.
func (s *Session) Locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Transition applies ev on behalf of actor. The source state is re-checked
// under the lock; an event that does not fit the current state is a conflict
// error and leaves the session untouched. then runs under the same lock after
// a successful transition, so effects of one call are ordered.
func (s *Session) Transition(ctx context.Context, ev Event, actor domain.UID, now time.Time, then func(Outcome)) error {
	if err := s.authorize(ev, actor); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := domain.CallStatus(s.machine.Current())
	if err := s.machine.Event(ctx, string(ev)); err != nil {
		return &Error{
			Kind: KindConflict,
			Msg:  fmt.Sprintf("call is %s", from),
			Err:  fmt.Errorf("%w: %v", ErrInvalidTransition, err),
		}
	}

	out := Outcome{
		From:  from,
		To:    domain.CallStatus(s.machine.Current()),
		Actor: actor,
	}
	switch out.To {
	case domain.StatusAccepted:
		s.acceptedAt = now
	case domain.StatusEnded:
		if !s.acceptedAt.IsZero() {
			out.Duration = int64(now.Sub(s.acceptedAt) / time.Second)
		}
	}
	if then != nil {
		then(out)
	}
	return nil
}

func (s *Session) authorize(ev Event, actor domain.UID) error {
	switch ev {
	case EventAccept, EventReject:
		if s.Role(actor) != domain.RoleCallee {
			return NotFoundError("call not found")
		}
	case EventHangup:
		if s.Role(actor) == domain.RoleNone {
			return NotFoundError("call not found")
		}
	}
	return nil
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		CallID:    s.ID,
		Caller:    s.Caller.UID,
		Callee:    s.Callee.UID,
		Media:     s.Media,
		Status:    domain.CallStatus(s.machine.Current()),
		CreatedAt: s.CreatedAt,
	}
	if !s.acceptedAt.IsZero() {
		at := s.acceptedAt
		v.AcceptedAt = &at
	}
	return v
}
