package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dgellow/auth-front/internal/crypto"
	"github.com/dgellow/auth-front/internal/session"
)

const testEncryptionKey = "test-encryption-key-32-bytes!!!!"

type apiCall struct {
	Method   string
	Email    string
	Password string
	Token    string
}

// fakeAuth records every call and answers with the configured results
type fakeAuth struct {
	mu    sync.Mutex
	calls []apiCall

	loginToken    string
	loginErr      error
	registerErr   error
	exchangeToken string
	exchangeErr   error
}

func (f *fakeAuth) record(c apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAuth) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (string, error) {
	f.record(apiCall{Method: "login", Email: email, Password: password})
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, email, password string) error {
	f.record(apiCall{Method: "register", Email: email, Password: password})
	return f.registerErr
}

func (f *fakeAuth) ExchangeOAuthToken(_ context.Context, accessToken string) (string, error) {
	f.record(apiCall{Method: "exchange", Token: accessToken})
	return f.exchangeToken, f.exchangeErr
}

type fakeRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *fakeRecorder) RecordAttempt(flow, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[flow+"/"+outcome]++
}

func (r *fakeRecorder) Count(flow, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[flow+"/"+outcome]
}

// fakeProvider stands in for Google without any network access
type fakeProvider struct {
	redirect    bool
	accessToken string
	exchangeErr error
	codes       []string
}

func (p *fakeProvider) Type() string { return "google" }
func (p *fakeProvider) ClientID() string { return "client-123.apps.googleusercontent.com" }
func (p *fakeProvider) Scopes() []string { return []string{"openid", "email"} }
func (p *fakeProvider) SupportsRedirect() bool { return p.redirect }

func (p *fakeProvider) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code string) (*oauth2.Token, error) {
	p.codes = append(p.codes, code)
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: p.accessToken}, nil
}

// failingStore refuses to save sessions
type failingStore struct {
	session.Store
}

func (failingStore) Save(http.ResponseWriter, string) error {
	return errors.New("disk on fire")
}

type testDeps struct {
	api      *fakeAuth
	attempts *fakeRecorder
	sessions *session.CookieStore
	flashes  *session.FlashStore
	pages    *PageHandlers
}

func newTestDeps(t *testing.T, api *fakeAuth, google *fakeProvider) *testDeps {
	t.Helper()
	enc, err := crypto.NewEncryptor([]byte(testEncryptionKey))
	require.NoError(t, err)

	d := &testDeps{
		api:      api,
		attempts: &fakeRecorder{},
		sessions: session.NewCookieStore(enc, time.Hour),
		flashes:  session.NewFlashStore([]byte("flash-key")),
	}
	if google != nil {
		d.pages = NewPageHandlers(api, d.sessions, d.flashes, google, d.attempts, "Acme")
	} else {
		d.pages = NewPageHandlers(api, d.sessions, d.flashes, nil, d.attempts, "Acme")
	}
	return d
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// withCookies copies the live cookies set on rr onto req
func withCookies(req *http.Request, rr *httptest.ResponseRecorder) *http.Request {
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
