package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dgellow/auth-front/internal/authapi"
	"github.com/dgellow/auth-front/internal/authflow"
	"github.com/dgellow/auth-front/internal/emailutil"
	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/session"
)

// AuthClient is the remote auth API as seen by the handlers
type AuthClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) error
	ExchangeOAuthToken(ctx context.Context, accessToken string) (string, error)
}

// AttemptRecorder counts auth attempts by flow and outcome
type AttemptRecorder interface {
	RecordAttempt(flow, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAttempt(string, string) {}

// PageHandlers serves the login, register and dashboard screens
type PageHandlers struct {
	api       AuthClient
	sessions  session.Store
	flashes   *session.FlashStore
	google    idp.Provider
	attempts  AttemptRecorder
	brandName string
}

// NewPageHandlers creates the screen handlers. google may be nil and
// attempts may be nil.
func NewPageHandlers(api AuthClient, sessions session.Store, flashes *session.FlashStore, google idp.Provider, attempts AttemptRecorder, brandName string) *PageHandlers {
	if attempts == nil {
		attempts = noopRecorder{}
	}
	return &PageHandlers{
		api:       api,
		sessions:  sessions,
		flashes:   flashes,
		google:    google,
		attempts:  attempts,
		brandName: brandName,
	}
}

// page builds the view model for screen, consuming any pending flash
func (h *PageHandlers) page(w http.ResponseWriter, r *http.Request, screen string) PageData {
	data := PageData{
		BrandName: h.brandName,
		Screen:    screen,
	}
	switch screen {
	case ScreenRegister:
		data.Title = "Create account"
		data.Pending = "Creating account…"
	case screenDashboard:
		data.Title = "Dashboard"
	default:
		data.Title = "Sign in"
		data.Pending = "Signing in…"
	}

	if h.google != nil {
		data.GoogleClientID = h.google.ClientID()
		data.GoogleScopes = strings.Join(h.google.Scopes(), " ")
		data.GoogleRedirect = h.google.SupportsRedirect()
	}

	if h.flashes != nil && r != nil {
		if f, ok := h.flashes.Pop(w, r); ok {
			if f.Kind == session.FlashError {
				data.Error = f.Message
			} else {
				data.Notice = f.Message
			}
		}
	}
	return data
}

// renderForm re-renders screen with the form's email and inline message
func (h *PageHandlers) renderForm(w http.ResponseWriter, r *http.Request, status int, screen string, form *authflow.Form) {
	data := h.page(w, r, screen)
	data.Email = form.Email
	data.Error = form.Message
	render(w, status, screen, data)
}

// LoginPage renders the login screen
func (h *PageHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, ScreenLogin, h.page(w, r, ScreenLogin))
}

// LoginSubmit handles the login form. Success stores the session and goes
// to the dashboard; failure re-renders the form and leaves the session alone.
func (h *PageHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.readForm(w, r, ScreenLogin, FlowLogin)
	if !ok {
		return
	}

	var token string
	err := authflow.Attempt(r.Context(), form, func(ctx context.Context) error {
		var err error
		token, err = h.api.Login(ctx, form.Email, form.Password)
		return err
	}, authflow.LoginMessage)
	if err != nil {
		h.attempts.RecordAttempt(FlowLogin, OutcomeFailure)
		log.LogInfoWithFields("auth", "Login failed", map[string]any{
			"email": emailutil.Redact(form.Email),
		})
		h.renderForm(w, r, http.StatusUnauthorized, ScreenLogin, form)
		return
	}

	if !h.completeSignIn(w, r, FlowLogin, token, func(msg string) {
		form.Message = msg
		h.renderForm(w, r, http.StatusInternalServerError, ScreenLogin, form)
	}) {
		return
	}
	log.LogInfoWithFields("auth", "Login succeeded", map[string]any{
		"email": emailutil.Redact(form.Email),
	})
}

// RegisterPage renders the registration screen
func (h *PageHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, ScreenRegister, h.page(w, r, ScreenRegister))
}

// RegisterSubmit handles the registration form. Success does not sign the
// user in: it carries a notice back to the login screen.
func (h *PageHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.readForm(w, r, ScreenRegister, FlowRegister)
	if !ok {
		return
	}

	err := authflow.Attempt(r.Context(), form, func(ctx context.Context) error {
		return h.api.Register(ctx, form.Email, form.Password)
	}, authflow.RegisterMessage)
	if err != nil {
		h.attempts.RecordAttempt(FlowRegister, OutcomeFailure)
		status := http.StatusBadRequest
		if errors.Is(err, authapi.ErrEmailTaken) {
			status = http.StatusConflict
		}
		log.LogInfoWithFields("auth", "Registration failed", map[string]any{
			"email":  emailutil.Redact(form.Email),
			"status": status,
		})
		h.renderForm(w, r, status, ScreenRegister, form)
		return
	}

	h.attempts.RecordAttempt(FlowRegister, OutcomeSuccess)
	log.LogInfoWithFields("auth", "Registration succeeded", map[string]any{
		"email": emailutil.Redact(form.Email),
	})
	if err := h.flashes.Set(w, session.Flash{Kind: session.FlashNotice, Message: authflow.MsgRegistered}); err != nil {
		log.LogErrorWithFields("auth", "Failed to set registration notice", map[string]any{
			"error": err.Error(),
		})
	}
	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}

// Dashboard renders the protected placeholder. It is only reachable behind
// NewRequireSessionMiddleware.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, screenDashboard, h.page(w, r, screenDashboard))
}

// Logout clears the session and returns to the login screen
func (h *PageHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	log.LogDebugWithFields("auth", "Logged out", nil)
	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}

// readForm parses and validates the credentials form. An incomplete form is
// re-rendered without calling the API.
func (h *PageHandlers) readForm(w http.ResponseWriter, r *http.Request, screen, flow string) (*authflow.Form, bool) {
	form := &authflow.Form{}
	if err := r.ParseForm(); err != nil {
		h.attempts.RecordAttempt(flow, OutcomeInvalid)
		form.Message = authflow.MsgGenericFailure
		h.renderForm(w, r, http.StatusBadRequest, screen, form)
		return nil, false
	}

	form.Email = r.PostFormValue("email")
	form.Password = r.PostFormValue("password")
	if !form.Validate() {
		h.attempts.RecordAttempt(flow, OutcomeInvalid)
		h.renderForm(w, r, http.StatusBadRequest, screen, form)
		return nil, false
	}
	return form, true
}

// completeSignIn stores token as the session and redirects to the
// dashboard. onError renders the failure when the session cannot be saved.
func (h *PageHandlers) completeSignIn(w http.ResponseWriter, r *http.Request, flow, token string, onError func(msg string)) bool {
	if err := h.sessions.Save(w, token); err != nil {
		h.attempts.RecordAttempt(flow, OutcomeFailure)
		log.LogErrorWithFields("auth", "Failed to store session", map[string]any{
			"flow":  flow,
			"error": err.Error(),
		})
		onError(authflow.MsgGenericFailure)
		return false
	}
	h.attempts.RecordAttempt(flow, OutcomeSuccess)
	http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
	return true
}
