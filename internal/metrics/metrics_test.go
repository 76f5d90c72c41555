package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_RecordsAttemptsAndUpstream(t *testing.T) {
	m := New()

	m.RecordAttempt("login", "success")
	m.RecordAttempt("login", "success")
	m.RecordAttempt("register", "failure")
	m.ObserveUpstream("login", "success", 120*time.Millisecond)
	m.ObserveRequest(http.MethodPost, http.StatusSeeOther)

	body := scrape(t, m.Handler())
	assert.Contains(t, body, `authfront_auth_attempts_total{flow="login",outcome="success"} 2`)
	assert.Contains(t, body, `authfront_auth_attempts_total{flow="register",outcome="failure"} 1`)
	assert.Contains(t, body, `authfront_upstream_request_duration_seconds_count{call="login",outcome="success"} 1`)
	assert.Contains(t, body, `authfront_http_requests_total{method="POST",status="303"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RecordAttempt("oauth", "success")

	assert.NotContains(t, scrape(t, b.Handler()), `flow="oauth"`)
}

func TestServer_Routes(t *testing.T) {
	m := New()
	m.RecordAttempt("login", "failure")
	srv := NewServer("", m)
	assert.Equal(t, DefaultAddr, srv.Addr())

	body := scrape(t, srv.Handler())
	assert.Contains(t, body, "authfront_")

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
