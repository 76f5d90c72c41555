package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dgellow/auth-front/internal/emailutil"
	"github.com/dgellow/auth-front/internal/ioutil"
	"github.com/dgellow/auth-front/internal/log"
)

const (
	// DefaultTimeout bounds a single call to the auth API
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
	snippetBytes     = 512
)

// Endpoint names, also used as metric labels
const (
	CallLogin       = "login"
	CallRegister    = "register"
	CallGoogleLogin = "google-login"
)

// Call outcomes reported to the Observer
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Observer receives one observation per upstream call
type Observer interface {
	ObserveUpstream(call, outcome string, d time.Duration)
}

// Client calls the remote auth API. Each method makes exactly one attempt.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	observer   Observer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-call deadline. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d > 0 {
			client.timeout = d
		}
	}
}

// WithObserver records latency and outcome of every call
func WithObserver(o Observer) Option {
	return func(client *Client) {
		client.observer = o
	}
}

// NewClient creates a client for the API rooted at baseURL, for example
// https://api.example.com/auth
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	AccessToken string `json:"accessToken"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	token, err := c.postForToken(ctx, CallLogin, credentialsRequest{Email: email, Password: password})
	if err != nil {
		log.LogDebugWithFields("authapi", "Login failed", map[string]any{
			"email": emailutil.Redact(email),
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return token, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	start := time.Now()
	resp, err := c.post(ctx, CallRegister, credentialsRequest{Email: email, Password: password})
	if err != nil {
		c.observe(CallRegister, OutcomeError, start)
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	defer ioutil.DrainClose(resp.Body, maxResponseBytes)

	if isSuccess(resp.StatusCode) {
		c.observe(CallRegister, OutcomeSuccess, start)
		return nil
	}
	c.observe(CallRegister, OutcomeRejected, start)

	body, _ := ioutil.ReadLimited(resp.Body, snippetBytes)
	log.LogDebugWithFields("authapi", "Registration rejected", map[string]any{
		"email":  emailutil.Redact(email),
		"status": resp.StatusCode,
	})

	if resp.StatusCode == http.StatusConflict || reportsEmailTaken(body) {
		return &emailTakenError{status: resp.StatusCode}
	}
	return fmt.Errorf("%w: status %d", ErrRegistrationFailed, resp.StatusCode)
}

// ExchangeOAuthToken forwards a provider access token once and returns the
// resulting session token. The access token is not inspected.
func (c *Client) ExchangeOAuthToken(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthProviderFailure)
	}
	token, err := c.postForToken(ctx, CallGoogleLogin, googleLoginRequest{AccessToken: accessToken})
	if err != nil {
		log.LogDebugWithFields("authapi", "OAuth token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrAuthProviderFailure, err)
	}
	return token, nil
}

// postForToken posts body and decodes a non-empty token from a 2xx response
func (c *Client) postForToken(ctx context.Context, call string, body any) (string, error) {
	start := time.Now()
	resp, err := c.post(ctx, call, body)
	if err != nil {
		c.observe(call, OutcomeError, start)
		return "", err
	}
	defer ioutil.DrainClose(resp.Body, maxResponseBytes)

	if !isSuccess(resp.StatusCode) {
		c.observe(call, OutcomeRejected, start)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, ioutil.Snippet(resp.Body, snippetBytes))
	}

	data, err := ioutil.ReadLimited(resp.Body, maxResponseBytes)
	if err != nil {
		c.observe(call, OutcomeError, start)
		return "", err
	}

	var decoded tokenResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		c.observe(call, OutcomeError, start)
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Token == "" {
		c.observe(call, OutcomeError, start)
		return "", fmt.Errorf("response has no token")
	}

	c.observe(call, OutcomeSuccess, start)
	return decoded.Token, nil
}

func (c *Client) post(ctx context.Context, call string, body any) (*http.Response, error) {
	endpoint, err := url.JoinPath(c.baseURL, call)
	if err != nil {
		return nil, fmt.Errorf("building %s url: %w", call, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("calling %s: %w", call, err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) observe(call, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(call, outcome, time.Since(start))
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func reportsEmailTaken(body []byte) bool {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false
	}
	return decoded.Error == "email_taken" || decoded.Code == "email_taken"
}
