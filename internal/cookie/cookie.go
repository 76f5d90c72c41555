package cookie

import (
	"net/http"
	"time"

	"github.com/dgellow/auth-front/internal/envutil"
	"github.com/dgellow/auth-front/internal/log"
)

// Cookie names used by auth-front
const (
	SessionCookie = "session_token"
	FlashCookie   = "flash"
)

// flashMaxAge bounds how long a flash survives if the redirect is never followed
const flashMaxAge = time.Minute

// SetSession sets the session cookie. A zero maxAge makes it a browser
// session cookie.
func SetSession(w http.ResponseWriter, value string, maxAge time.Duration) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})

	log.LogTraceWithFields("cookie", "Session cookie set", map[string]any{
		"maxAge": maxAge.String(),
		"secure": secure,
	})
}

// SetFlash sets the one-shot flash cookie
func SetFlash(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flashMaxAge.Seconds()),
	})
}

// Clear removes a cookie by setting MaxAge to -1
func Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// ClearSession removes the session cookie
func ClearSession(w http.ResponseWriter) {
	Clear(w, SessionCookie)
	log.LogTraceWithFields("cookie", "Session cookie cleared", nil)
}

// ClearFlash removes the flash cookie
func ClearFlash(w http.ResponseWriter) {
	Clear(w, FlashCookie)
}

// Get retrieves a non-empty cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	if c.Value == "" {
		return "", http.ErrNoCookie
	}
	return c.Value, nil
}

// GetSession retrieves the session cookie value
func GetSession(r *http.Request) (string, error) {
	return Get(r, SessionCookie)
}

// GetFlash retrieves the flash cookie value
func GetFlash(r *http.Request) (string, error) {
	return Get(r, FlashCookie)
}
