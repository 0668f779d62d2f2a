package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Call/internal/adapters/identity"
	"github.com/dkeye/Call/internal/adapters/signal"
	"github.com/dkeye/Call/internal/app"
	"github.com/dkeye/Call/internal/app/orch"
	"github.com/dkeye/Call/internal/config"
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/metrics"
	"github.com/dkeye/Call/internal/protocol"
	"github.com/gin-gonic/gin"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "test",
		Secret:     "cookie-secret",
		JWTSecret:  "jwt",
		ICEServers: []config.ICEServer{{URLs: []string{"stun:stun.example.org"}}},
	}
	ids := identity.NewJWTGateway(cfg.JWTSecret, nil)
	m := metrics.New("test")
	o := &orch.Orchestrator{
		Registry:    app.NewRegistry(),
		Sessions:    app.NewSessionTable(),
		Timeouts:    app.NewScheduler(),
		Policy:      app.SimplePolicy{},
		Identity:    ids,
		Metrics:     m,
		RingTimeout: time.Minute,
	}
	t.Cleanup(o.Timeouts.Stop)
	ctrl := signal.NewSignalWSController(o, ids, m, signal.Options{})
	return SetupRouter(context.Background(), cfg, ctrl, m), o
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	r, o := newRouter(t)
	o.Authenticate(context.Background(), &domain.User{UID: "1111111111"}, nopConn{})

	w := get(t, r, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Online   int    `json:"online"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" || body.Online != 1 || body.Sessions != 0 {
		t.Fatalf("body %+v", body)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "CallSessions=") {
		t.Fatal("client token cookie not set")
	}
}

func TestActiveCallsAndOnline(t *testing.T) {
	r, o := newRouter(t)
	ctx := context.Background()
	alice := &domain.User{UID: "1111111111", DisplayName: "Alice"}
	bob := &domain.User{UID: "2222222222", DisplayName: "Bob"}
	o.Authenticate(ctx, alice, nopConn{})
	o.Authenticate(ctx, bob, nopConn{})
	if err := o.RequestCall(ctx, alice, nopConn{}, protocolRequest(bob.UID)); err != nil {
		t.Fatal(err)
	}

	var calls struct {
		Calls []core.SessionView `json:"calls"`
	}
	if err := json.Unmarshal(get(t, r, "/api/calls/active").Body.Bytes(), &calls); err != nil {
		t.Fatal(err)
	}
	if len(calls.Calls) != 1 || calls.Calls[0].Caller != alice.UID || calls.Calls[0].Status != domain.StatusRinging {
		t.Fatalf("calls %+v", calls)
	}

	var online struct {
		Users []app.Presence `json:"users"`
	}
	if err := json.Unmarshal(get(t, r, "/api/online").Body.Bytes(), &online); err != nil {
		t.Fatal(err)
	}
	if len(online.Users) != 2 {
		t.Fatalf("online %+v", online)
	}
}

func TestICEServersAndMetrics(t *testing.T) {
	r, _ := newRouter(t)
	w := get(t, r, "/api/ice-servers")
	if !strings.Contains(w.Body.String(), "stun:stun.example.org") {
		t.Fatalf("ice servers %s", w.Body.String())
	}
	w = get(t, r, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test_online_users") {
		t.Fatalf("metrics %d", w.Code)
	}
}

func protocolRequest(to domain.UID) protocol.CallRequest {
	return protocol.CallRequest{ToUID: string(to)}
}
