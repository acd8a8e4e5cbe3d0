package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument(t *testing.T) {
	m := New()
	handler := m.Instrument("GET /children/{applicationNumber}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/children/AB12CD34", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET /children/{applicationNumber}", "GET", "404"))
	if got != 2 {
		t.Errorf("expected 2 requests labelled 404, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("expected one latency series, got %d", n)
	}
}

func TestLoginAttempt(t *testing.T) {
	m := New()
	m.LoginAttempt("DOCTOR", true)
	m.LoginAttempt("PATIENT", false)
	m.LoginAttempt("PATIENT", false)

	if got := testutil.ToFloat64(m.loginAttempts.WithLabelValues("DOCTOR", "success")); got != 1 {
		t.Errorf("expected 1 doctor success, got %v", got)
	}
	if got := testutil.ToFloat64(m.loginAttempts.WithLabelValues("PATIENT", "failure")); got != 2 {
		t.Errorf("expected 2 patient failures, got %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.LoginAttempt("DOCTOR", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `child_tracker_login_attempts_total{result="success",role="DOCTOR"} 1`) {
		t.Errorf("login counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected Go runtime collector output")
	}
}
