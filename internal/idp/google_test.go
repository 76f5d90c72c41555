package idp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dgellow/auth-front/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testGoogleConfig() config.GoogleConfig {
	return config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/oauth/callback",
		Scopes:       []string{"openid", "email"},
	}
}

func TestGoogleProvider_Type(t *testing.T) {
	provider := NewGoogleProvider(testGoogleConfig())
	assert.Equal(t, "google", provider.Type())
	assert.Equal(t, "client-id", provider.ClientID())
	assert.Equal(t, []string{"openid", "email"}, provider.Scopes())
}

func TestGoogleProvider_AuthURL(t *testing.T) {
	provider := NewGoogleProvider(testGoogleConfig())

	authURL, err := url.Parse(provider.AuthURL("test-state"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", authURL.Host)
	q := authURL.Query()
	assert.Equal(t, "test-state", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/oauth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "openid email", q.Get("scope"))
}

func TestGoogleProvider_SupportsRedirect(t *testing.T) {
	assert.True(t, NewGoogleProvider(testGoogleConfig()).SupportsRedirect())

	popupOnly := NewGoogleProvider(config.GoogleConfig{ClientID: "client-id"})
	assert.False(t, popupOnly.SupportsRedirect())

	_, err := popupOnly.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, ErrRedirectDisabled)
}

func TestGoogleProvider_ExchangeCode(t *testing.T) {
	var form url.Values
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.access","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	provider := NewGoogleProvider(testGoogleConfig(), WithEndpoint(oauth2.Endpoint{
		AuthURL:   tokenServer.URL + "/auth",
		TokenURL:  tokenServer.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}))

	token, err := provider.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", token.AccessToken)

	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "auth-code", form.Get("code"))
	assert.Equal(t, "client-id", form.Get("client_id"))
	assert.Equal(t, "client-secret", form.Get("client_secret"))
}

func TestGoogleProvider_ExchangeCodeFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer tokenServer.Close()

	provider := NewGoogleProvider(testGoogleConfig(), WithEndpoint(oauth2.Endpoint{
		TokenURL:  tokenServer.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}))

	_, err := provider.ExchangeCode(context.Background(), "expired-code")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(nil)
	require.NoError(t, err)
	assert.Nil(t, provider)

	_, err = NewProvider(&config.GoogleConfig{})
	assert.Error(t, err)

	cfg := testGoogleConfig()
	provider, err = NewProvider(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "google", provider.Type())
}
