package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstreamLabels(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("test-provider", "503"))
	ObserveUpstream("test-provider", 503, 20*time.Millisecond)
	after := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("test-provider", "503"))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}

	ObserveUpstream("test-provider", 0, time.Millisecond)
	if testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("test-provider", "transport_error")) < 1 {
		t.Fatalf("transport errors should be labelled")
	}
}

func TestHandlerExposesActionMetrics(t *testing.T) {
	ObserveAction("TEST_ACTION", "ok", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `kiln_plugin_action_invocations_total{action="TEST_ACTION",outcome="ok"}`) {
		t.Fatalf("action metric missing from exposition:\n%s", body)
	}
}

func TestStartServerRequiresAddress(t *testing.T) {
	if err := StartServer(t.Context(), ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
