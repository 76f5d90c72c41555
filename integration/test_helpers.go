package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dgellow/auth-front/internal"
	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/idp"
)

const (
	testEncryptionKey = "integration-key-0123456789abcdef"
	testAuthCode      = "test-auth-code"
	testGoogleToken   = "test-access-token"
)

// FakeAuthAPI is an in-memory auth API with /login, /register and /google-login
type FakeAuthAPI struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]string
	calls    map[string]int
	delay    time.Duration
}

// NewFakeAuthAPI starts a fake auth API mounted under /auth
func NewFakeAuthAPI(t *testing.T) *FakeAuthAPI {
	t.Helper()
	api := &FakeAuthAPI{
		accounts: make(map[string]string),
		calls:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		api.begin("login", r, &req)

		api.mu.Lock()
		password, ok := api.accounts[req.Email]
		api.mu.Unlock()
		if !ok || password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "session-" + req.Email})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		api.begin("register", r, &req)

		api.mu.Lock()
		defer api.mu.Unlock()
		if _, exists := api.accounts[req.Email]; exists {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email_taken"})
			return
		}
		api.accounts[req.Email] = req.Password
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	})
	mux.HandleFunc("POST /auth/google-login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccessToken string `json:"accessToken"`
		}
		api.begin("google-login", r, &req)

		if req.AccessToken != testGoogleToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "session-google"})
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (a *FakeAuthAPI) begin(call string, r *http.Request, v any) {
	a.mu.Lock()
	a.calls[call]++
	delay := a.delay
	a.mu.Unlock()

	_ = json.NewDecoder(r.Body).Decode(v)
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
		}
	}
}

// AddAccount registers an account directly
func (a *FakeAuthAPI) AddAccount(email, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[email] = password
}

// SetDelay makes every call wait d before answering
func (a *FakeAuthAPI) SetDelay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// Calls returns how many times call was made
func (a *FakeAuthAPI) Calls(call string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[call]
}

// BaseURL is the prefix the front end appends call paths to
func (a *FakeAuthAPI) BaseURL() string {
	return a.URL + "/auth"
}

// NewFakeGoogleServer serves the consent redirect and the token endpoint
func NewFakeGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		redirectURI := r.URL.Query().Get("redirect_uri")
		state := r.URL.Query().Get("state")
		if r.URL.Query().Get("deny") != "" {
			http.Redirect(w, r, fmt.Sprintf("%s?error=access_denied&state=%s", redirectURI, url.QueryEscape(state)), http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("%s?code=%s&state=%s", redirectURI, testAuthCode, url.QueryEscape(state)), http.StatusFound)
	})

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if r.FormValue("code") != testAuthCode {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid authorization code",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": testGoogleToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// TestEnvironment is one running front end wired to fake upstreams
type TestEnvironment struct {
	App    *internal.AuthFront
	Front  *httptest.Server
	API    *FakeAuthAPI
	Google *httptest.Server
}

type envOptions struct {
	google     bool
	apiTimeout string
}

type envOption func(*envOptions)

func withGoogle() envOption {
	return func(o *envOptions) { o.google = true }
}

func withAPITimeout(d string) envOption {
	return func(o *envOptions) { o.apiTimeout = d }
}

// SetupTestEnvironment starts the front end from a JSON config document the
// same way the serve command loads one
func SetupTestEnvironment(t *testing.T, opts ...envOption) *TestEnvironment {
	t.Helper()
	o := envOptions{apiTimeout: "5s"}
	for _, opt := range opts {
		opt(&o)
	}

	env := &TestEnvironment{API: NewFakeAuthAPI(t)}

	var handler http.Handler = http.NotFoundHandler()
	env.Front = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.Front.Close)

	t.Setenv("TEST_SESSION_KEY", testEncryptionKey)
	doc := map[string]any{
		"version": config.Version,
		"server": map[string]any{
			"baseURL":   env.Front.URL,
			"addr":      "127.0.0.1:0",
			"brandName": "Integration",
		},
		"api": map[string]any{
			"baseURL": env.API.BaseURL(),
			"timeout": o.apiTimeout,
		},
		"session": map[string]any{
			"encryptionKey": map[string]string{"$env": "TEST_SESSION_KEY"},
		},
	}

	var appOpts []internal.Option
	if o.google {
		env.Google = NewFakeGoogleServer(t)
		t.Setenv("TEST_GOOGLE_SECRET", "google-secret")
		doc["google"] = map[string]any{
			"clientId":     "integration-client",
			"clientSecret": map[string]string{"$env": "TEST_GOOGLE_SECRET"},
			"redirectUri":  env.Front.URL + "/oauth/callback",
		}
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)

	if o.google {
		provider := idp.NewGoogleProvider(*cfg.Google, idp.WithEndpoint(oauth2.Endpoint{
			AuthURL:   env.Google.URL + "/auth",
			TokenURL:  env.Google.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}))
		appOpts = append(appOpts, internal.WithIdentityProvider(provider))
	}

	env.App, err = internal.NewAuthFront(cfg, appOpts...)
	require.NoError(t, err)
	handler = env.App.Handler()
	return env
}

// Browser is a cookie-keeping client that does not follow redirects
type Browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

// NewBrowser creates a browser pointed at the front end
func (env *TestEnvironment) NewBrowser(t *testing.T) *Browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Browser{
		t:    t,
		base: env.Front.URL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Response is a fully read HTTP response
type Response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (b *Browser) do(req *http.Request) Response {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return Response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (b *Browser) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return b.base + path
}

// Get fetches path, which may be absolute
func (b *Browser) Get(path string) Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.url(path), nil)
	require.NoError(b.t, err)
	return b.do(req)
}

// PostForm submits values to path
func (b *Browser) PostForm(path string, values url.Values) Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.url(path), strings.NewReader(values.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// Delete sends a DELETE to path
func (b *Browser) Delete(path string) Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodDelete, b.url(path), nil)
	require.NoError(b.t, err)
	return b.do(req)
}

// HasCookie reports whether the jar holds name for the front end
func (b *Browser) HasCookie(name string) bool {
	u, _ := url.Parse(b.base)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SessionState asks the front end whether this browser is signed in
func (b *Browser) SessionState() bool {
	b.t.Helper()
	resp := b.Get("/api/session")
	require.Equal(b.t, http.StatusOK, resp.Status)
	var state struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(b.t, json.Unmarshal([]byte(resp.Body), &state))
	return state.Authenticated
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func scrapeMetrics(t *testing.T, env *TestEnvironment) string {
	t.Helper()
	rr := httptest.NewRecorder()
	env.App.Metrics().Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}
