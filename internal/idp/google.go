package idp

import (
	"context"
	"errors"

	"github.com/dgellow/auth-front/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrRedirectDisabled is returned by ExchangeCode when no client secret or
// redirect URI is configured
var ErrRedirectDisabled = errors.New("google redirect flow is not configured")

// GoogleProvider implements the Provider interface for Google OAuth.
type GoogleProvider struct {
	config oauth2.Config
}

// GoogleOption customizes a GoogleProvider
type GoogleOption func(*GoogleProvider)

// WithEndpoint overrides Google's authorization and token endpoints
func WithEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) {
		p.config.Endpoint = endpoint
	}
}

// NewGoogleProvider creates a new Google OAuth provider.
func NewGoogleProvider(cfg config.GoogleConfig, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: string(cfg.ClientSecret),
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Type returns the provider type.
func (p *GoogleProvider) Type() string {
	return "google"
}

// ClientID returns the OAuth client ID.
func (p *GoogleProvider) ClientID() string {
	return p.config.ClientID
}

// Scopes returns the requested scopes.
func (p *GoogleProvider) Scopes() []string {
	return p.config.Scopes
}

// SupportsRedirect reports whether the code flow is configured.
func (p *GoogleProvider) SupportsRedirect() bool {
	return p.config.ClientSecret != "" && p.config.RedirectURL != ""
}

// AuthURL generates the authorization URL.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode exchanges an authorization code for tokens.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if !p.SupportsRedirect() {
		return nil, ErrRedirectDisabled
	}
	return p.config.Exchange(ctx, code)
}
