package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Call/internal/app"
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/metrics"
)

var (
	alice = &domain.User{UID: "1111111111", DisplayName: "Alice"}
	bob   = &domain.User{UID: "2222222222", DisplayName: "Bob"}
	carol = &domain.User{UID: "3333333333", DisplayName: "Carol"}
	dave  = &domain.User{UID: "4444444444", DisplayName: "Dave"}
)

type msg map[string]any

func (m msg) str(k string) string {
	s, _ := m[k].(string)
	return s
}

// recConn records decoded frames.
type recConn struct {
	mu     sync.Mutex
	frames []msg
	closed bool
	full   bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	var m msg
	if err := json.Unmarshal(f, &m); err != nil {
		return err
	}
	c.frames = append(c.frames, m)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *recConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recConn) all() []msg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]msg(nil), c.frames...)
}

func (c *recConn) ofType(typ string) []msg {
	var out []msg
	for _, m := range c.all() {
		if m.str("type") == typ {
			out = append(out, m)
		}
	}
	return out
}

func (c *recConn) one(t *testing.T, typ string) msg {
	t.Helper()
	got := c.ofType(typ)
	if len(got) != 1 {
		t.Fatalf("expected one %s frame, got %d: %v", typ, len(got), c.all())
	}
	return got[0]
}

func (c *recConn) none(t *testing.T, typ string) {
	t.Helper()
	if got := c.ofType(typ); len(got) != 0 {
		t.Fatalf("unexpected %s frames: %v", typ, got)
	}
}

// memLog is an in-memory call log.
type memLog struct {
	mu      sync.Mutex
	records []domain.CallRecord
}

func (l *memLog) Append(_ context.Context, rec domain.CallRecord) error {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return nil
}

func (l *memLog) all() []domain.CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.CallRecord(nil), l.records...)
}

type harness struct {
	o   *Orchestrator
	log *memLog

	mu  sync.Mutex
	now time.Time
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		log: &memLog{},
		now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	h.o = &Orchestrator{
		Registry:    app.NewRegistry(),
		Sessions:    app.NewSessionTable(),
		Timeouts:    app.NewScheduler(),
		Policy:      app.SimplePolicy{},
		CallLog:     h.log,
		Metrics:     metrics.New("test"),
		RingTimeout: time.Hour,
		Now:         h.clock,
	}
	t.Cleanup(h.o.Timeouts.Stop)
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	h.mu.Unlock()
}

func (h *harness) connect(u *domain.User) *recConn {
	c := &recConn{}
	h.o.Authenticate(context.Background(), u, c)
	return c
}

// records waits for pending log writes and returns them.
func (h *harness) records() []domain.CallRecord {
	h.o.Wait()
	return h.log.all()
}

// ring starts a call and returns its id.
func (h *harness) ring(t *testing.T, caller *domain.User, callerConn *recConn, callee *domain.User) domain.CallID {
	t.Helper()
	before := len(callerConn.ofType("call.ringing"))
	if err := h.o.RequestCall(context.Background(), caller, callerConn, callRequest(callee.UID, "")); err != nil {
		t.Fatalf("request call: %v", err)
	}
	ringing := callerConn.ofType("call.ringing")
	if len(ringing) != before+1 {
		t.Fatalf("no call.ringing: %v", callerConn.all())
	}
	return domain.CallID(ringing[len(ringing)-1].str("callId"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
