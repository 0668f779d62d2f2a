package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/Call/internal/domain"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New("call")
	m.SetOnline(3)
	m.SetActiveCalls(1)
	m.CallOutcome(domain.LogMissed)
	m.CallRequest()
	m.Frame("call.request")
	m.Error("conflict_error")
	m.Relayed("call.offer")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"call_online_users 3",
		"call_active_calls 1",
		`call_call_outcomes_total{status="missed"} 1`,
		"call_call_requests_total 1",
		`call_frames_total{type="call.request"} 1`,
		`call_errors_total{kind="conflict_error"} 1`,
		`call_relayed_total{type="call.offer"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SetOnline(1)
	m.CallOutcome(domain.LogBusy)
	m.Frame("x")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New("x"), New("x")
	a.CallRequest()
	b.CallRequest()
}
