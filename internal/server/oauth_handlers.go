package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dgellow/auth-front/internal/authflow"
	"github.com/dgellow/auth-front/internal/crypto"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/session"
)

// OAuthHandlers serves the Google sign-in paths. Both the popup and the
// redirect flow end by forwarding one provider access token to the auth API.
type OAuthHandlers struct {
	pages      *PageHandlers
	stateToken crypto.TokenSigner
}

// NewOAuthHandlers creates the OAuth handlers. stateToken signs the state
// parameter of the redirect flow.
func NewOAuthHandlers(pages *PageHandlers, stateToken crypto.TokenSigner) *OAuthHandlers {
	return &OAuthHandlers{
		pages:      pages,
		stateToken: stateToken,
	}
}

// TokenHandler receives the access token posted by the browser token client
func (h *OAuthHandlers) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if h.pages.google == nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeInvalid)
		h.pages.renderForm(w, r, http.StatusBadRequest, ScreenLogin, &authflow.Form{Message: authflow.MsgGoogleFailed})
		return
	}

	screen := normalizeScreen(r.PostFormValue("screen"))
	form := &authflow.Form{}

	token, err := h.exchange(r.Context(), form, r.PostFormValue("access_token"))
	if err != nil {
		h.pages.renderForm(w, r, http.StatusUnauthorized, screen, form)
		return
	}

	h.pages.completeSignIn(w, r, FlowOAuth, token, func(msg string) {
		form.Message = msg
		h.pages.renderForm(w, r, http.StatusInternalServerError, screen, form)
	})
}

// StartHandler redirects to the provider's consent screen
func (h *OAuthHandlers) StartHandler(w http.ResponseWriter, r *http.Request) {
	google := h.pages.google
	if google == nil || !google.SupportsRedirect() {
		http.NotFound(w, r)
		return
	}

	state, err := h.signState(normalizeScreen(r.URL.Query().Get("screen")))
	if err != nil {
		log.LogErrorWithFields("oauth", "Failed to create state", map[string]any{
			"error": err.Error(),
		})
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	log.LogDebugWithFields("oauth", "Redirecting to provider", map[string]any{
		"provider": google.Type(),
	})
	http.Redirect(w, r, google.AuthURL(state), http.StatusFound)
}

// CallbackHandler completes the redirect flow. Failures go back to the
// screen the flow started from with an error flash.
func (h *OAuthHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	google := h.pages.google
	if google == nil || !google.SupportsRedirect() {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	var state session.AuthorizationState
	if err := h.stateToken.Verify(query.Get("state"), &state); err != nil {
		log.LogWarnWithFields("oauth", "Invalid OAuth state", map[string]any{
			"error": err.Error(),
		})
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeInvalid)
		h.failRedirect(w, r, ScreenLogin)
		return
	}
	screen := normalizeScreen(state.Screen)

	if providerErr := query.Get("error"); providerErr != "" {
		log.LogInfoWithFields("oauth", "Provider returned an error", map[string]any{
			"error": providerErr,
		})
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeFailure)
		h.failRedirect(w, r, screen)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeInvalid)
		h.failRedirect(w, r, screen)
		return
	}

	providerToken, err := google.ExchangeCode(r.Context(), code)
	if err != nil {
		log.LogWarnWithFields("oauth", "Code exchange failed", map[string]any{
			"provider": google.Type(),
			"error":    err.Error(),
		})
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeFailure)
		h.failRedirect(w, r, screen)
		return
	}

	form := &authflow.Form{}
	token, err := h.exchange(r.Context(), form, providerToken.AccessToken)
	if err != nil {
		h.failRedirect(w, r, screen)
		return
	}

	h.pages.completeSignIn(w, r, FlowOAuth, token, func(string) {
		h.failRedirect(w, r, screen)
	})
}

// exchange forwards accessToken once through the submit state machine
func (h *OAuthHandlers) exchange(ctx context.Context, form *authflow.Form, accessToken string) (string, error) {
	var token string
	err := authflow.Attempt(ctx, form, func(ctx context.Context) error {
		var err error
		token, err = h.pages.api.ExchangeOAuthToken(ctx, accessToken)
		return err
	}, authflow.OAuthMessage)
	if err != nil {
		h.pages.attempts.RecordAttempt(FlowOAuth, OutcomeFailure)
		log.LogInfoWithFields("oauth", "OAuth sign-in failed", map[string]any{
			"error": err.Error(),
		})
		return "", err
	}
	return token, nil
}

func (h *OAuthHandlers) signState(screen string) (string, error) {
	nonce, err := crypto.GenerateSecureToken()
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return h.stateToken.Sign(session.AuthorizationState{Nonce: nonce, Screen: screen})
}

func (h *OAuthHandlers) failRedirect(w http.ResponseWriter, r *http.Request, screen string) {
	if err := h.pages.flashes.Set(w, session.Flash{Kind: session.FlashError, Message: authflow.MsgGoogleFailed}); err != nil {
		log.LogErrorWithFields("oauth", "Failed to set error flash", map[string]any{
			"error": err.Error(),
		})
	}
	http.Redirect(w, r, screenPath(screen), http.StatusSeeOther)
}
