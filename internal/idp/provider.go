package idp

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider abstracts the identity provider used for social sign-in. Tokens
// it returns are forwarded to the auth API as-is; nothing here inspects
// them.
type Provider interface {
	// Type returns the provider type identifier (e.g., "google").
	Type() string

	// ClientID is exposed to the browser token client for the popup flow.
	ClientID() string

	// Scopes requested from the provider.
	Scopes() []string

	// SupportsRedirect reports whether AuthURL and ExchangeCode can be used.
	SupportsRedirect() bool

	// AuthURL generates the authorization URL for the redirect flow.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
}
