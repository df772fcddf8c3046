package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.UserRegistered()
	m.LoginAttempt(true)
	m.LoginAttempt(false)
	m.LoginAttempt(false)
	m.CheckRecorded("IN")
	m.CheckRecorded("OUT")
	m.CheckRecorded("IN")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checks.WithLabelValues("IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("OUT")))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("/api/checks", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/checks", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.CheckRecorded("IN")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `checador_check_events_total{type="IN"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
