package integration

import (
	"net/http"
	"strings"
	"time"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgellow/auth-front/internal/authflow"
	"github.com/dgellow/auth-front/internal/cookie"
)

func TestRegisterThenLogin(t *testing.T) {
	env := SetupTestEnvironment(t)
	browser := env.NewBrowser(t)

	t.Run("register redirects to login with a notice", func(t *testing.T) {
		resp := browser.PostForm("/register", credentials("ada@example.com", "analytical"))
		assert.Equal(t, http.StatusSeeOther, resp.Status)
		assert.Equal(t, "/", resp.Location)
		assert.False(t, browser.HasCookie(cookie.SessionCookie))

		page := browser.Get("/")
		assert.Equal(t, http.StatusOK, page.Status)
		assert.Contains(t, page.Body, authflow.MsgRegistered)

		again := browser.Get("/")
		assert.NotContains(t, again.Body, authflow.MsgRegistered)
	})

	t.Run("registering twice reports the taken email", func(t *testing.T) {
		resp := browser.PostForm("/register", credentials("ada@example.com", "analytical"))
		assert.Equal(t, http.StatusConflict, resp.Status)
		assert.Contains(t, resp.Body, authflow.MsgEmailTaken)
	})

	t.Run("login with the new account", func(t *testing.T) {
		resp := browser.PostForm("/", credentials("ada@example.com", "analytical"))
		assert.Equal(t, http.StatusSeeOther, resp.Status)
		assert.Equal(t, "/dashboard", resp.Location)
		assert.True(t, browser.SessionState())

		dashboard := browser.Get("/dashboard")
		assert.Equal(t, http.StatusOK, dashboard.Status)
		assert.Contains(t, dashboard.Body, "You are signed in")
	})

	t.Run("logout clears the session", func(t *testing.T) {
		resp := browser.PostForm("/logout", nil)
		assert.Equal(t, http.StatusSeeOther, resp.Status)
		assert.False(t, browser.SessionState())

		dashboard := browser.Get("/dashboard")
		assert.Equal(t, http.StatusFound, dashboard.Status)
		assert.Equal(t, "/", dashboard.Location)
	})

	assert.Equal(t, 2, env.API.Calls("register"))
	assert.Equal(t, 1, env.API.Calls("login"))
}

func TestLoginFailure(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.API.AddAccount("grace@example.com", "cobol")
	browser := env.NewBrowser(t)

	resp := browser.PostForm("/", credentials("grace@example.com", "fortran"))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Contains(t, resp.Body, authflow.MsgInvalidCredentials)
	assert.Contains(t, resp.Body, `value="grace@example.com"`)
	assert.NotContains(t, resp.Body, "fortran")
	assert.False(t, browser.SessionState())
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.API.AddAccount("grace@example.com", "cobol")
	browser := env.NewBrowser(t)

	require.Equal(t, http.StatusSeeOther, browser.PostForm("/", credentials("grace@example.com", "cobol")).Status)
	require.True(t, browser.SessionState())

	resp := browser.PostForm("/", credentials("grace@example.com", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.True(t, browser.SessionState())
}

func TestEmptyFormNeverReachesAPI(t *testing.T) {
	env := SetupTestEnvironment(t)
	browser := env.NewBrowser(t)

	for _, path := range []string{"/", "/register"} {
		resp := browser.PostForm(path, credentials("", ""))
		assert.Equal(t, http.StatusBadRequest, resp.Status, path)
		assert.Contains(t, resp.Body, authflow.MsgRequired, path)
	}
	assert.Zero(t, env.API.Calls("login"))
	assert.Zero(t, env.API.Calls("register"))
}

func TestUpstreamTimeout(t *testing.T) {
	env := SetupTestEnvironment(t, withAPITimeout("100ms"))
	env.API.AddAccount("slow@example.com", "pw")
	env.API.SetDelay(2 * time.Second)
	browser := env.NewBrowser(t)

	resp := browser.PostForm("/", credentials("slow@example.com", "pw"))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Contains(t, resp.Body, authflow.MsgInvalidCredentials)
	assert.False(t, browser.SessionState())
}

func TestUnknownPathsAndMethods(t *testing.T) {
	env := SetupTestEnvironment(t)
	browser := env.NewBrowser(t)

	assert.Equal(t, http.StatusNotFound, browser.Get("/nope").Status)
	assert.Equal(t, http.StatusMethodNotAllowed, browser.Get("/logout").Status)
	assert.Equal(t, http.StatusNotFound, browser.Get("/oauth/google").Status)
	assert.Equal(t, http.StatusNotFound, browser.PostForm("/oauth/google/token", nil).Status)
}

func TestSecurityHeadersAndHealth(t *testing.T) {
	env := SetupTestEnvironment(t)
	browser := env.NewBrowser(t)

	health := browser.Get("/health")
	assert.Equal(t, http.StatusOK, health.Status)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body)

	page := browser.Get("/")
	assert.Equal(t, "nosniff", page.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", page.Header.Get("Cache-Control"))
	assert.Contains(t, page.Body, "Integration")
}

func TestSessionAPI(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.API.AddAccount("linus@example.com", "git")
	browser := env.NewBrowser(t)

	assert.False(t, browser.SessionState())
	browser.PostForm("/", credentials("linus@example.com", "git"))
	assert.True(t, browser.SessionState())

	resp := browser.Delete("/api/session")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.False(t, browser.SessionState())
}

func TestMetricsRecordFlows(t *testing.T) {
	env := SetupTestEnvironment(t)
	env.API.AddAccount("ken@example.com", "unix")
	browser := env.NewBrowser(t)

	browser.PostForm("/", credentials("ken@example.com", "unix"))
	browser.PostForm("/", credentials("ken@example.com", "plan9"))

	out := scrapeMetrics(t, env)
	for _, want := range []string{
		`authfront_auth_attempts_total{flow="login",outcome="success"} 1`,
		`authfront_auth_attempts_total{flow="login",outcome="failure"} 1`,
		`authfront_http_requests_total{method="POST",status="303"} 1`,
		`authfront_http_requests_total{method="POST",status="401"} 1`,
		`authfront_upstream_request_duration_seconds_count{call="login",outcome="success"} 1`,
	} {
		assert.True(t, strings.Contains(out, want), "missing %s", want)
	}
}
