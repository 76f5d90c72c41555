package server

import (
	"net/http"
	"time"

	"github.com/dgellow/auth-front/internal/cookie"
	jsonwriter "github.com/dgellow/auth-front/internal/json"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/session"
)

// MiddlewareFunc is a function that wraps an http.Handler
type MiddlewareFunc func(http.Handler) http.Handler

// ChainMiddleware chains multiple middleware functions. The first one wraps
// innermost.
func ChainMiddleware(h http.Handler, middlewares ...MiddlewareFunc) http.Handler {
	for _, mw := range middlewares {
		h = mw(h)
	}
	return h
}

// RequestObserver receives the outcome of every served request
type RequestObserver interface {
	ObserveRequest(method string, status int)
}

// responseWriterDelegator wraps http.ResponseWriter to capture status and bytes written
// while properly delegating all optional interfaces through Unwrap
type responseWriterDelegator struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriterDelegator {
	return &responseWriterDelegator{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

func (r *responseWriterDelegator) Status() int {
	return r.status
}

func (r *responseWriterDelegator) BytesWritten() int {
	return r.written
}

func (r *responseWriterDelegator) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseWriterDelegator) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += n
	return n, err
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController
func (r *responseWriterDelegator) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

var _ http.ResponseWriter = (*responseWriterDelegator)(nil)

// NewLoggerMiddleware logs one line per request. Query strings are left out
// because the OAuth callback carries the authorization code there.
func NewLoggerMiddleware(prefix string) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			log.LogInfoWithFields(prefix, "request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       wrapped.BytesWritten(),
				"remote_addr": r.RemoteAddr,
			})
		})
	}
}

// NewMetricsMiddleware reports every request to observer
func NewMetricsMiddleware(observer RequestObserver) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			observer.ObserveRequest(r.Method, wrapped.Status())
		})
	}
}

// NewRecoverMiddleware recovers from panics
func NewRecoverMiddleware(prefix string) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.LogErrorWithFields(prefix, "Recovered from panic", map[string]any{
						"panic":  err,
						"method": r.Method,
						"path":   r.URL.Path,
					})
					jsonwriter.WriteInternalServerError(w, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NewSecurityHeadersMiddleware sets headers every HTML response should carry
func NewSecurityHeadersMiddleware() MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// NewRequireSessionMiddleware sends browsers without a readable session back
// to the login screen before the wrapped handler runs.
func NewRequireSessionMiddleware(sessions session.Store) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Has(r) {
				clearStaleSession(w, r, sessions)
				log.LogDebugWithFields("session", "No session, redirecting to login", map[string]any{
					"path": r.URL.Path,
				})
				http.Redirect(w, r, PathLogin, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clearStaleSession removes a session cookie that is present but unreadable
// so the browser stops sending it
func clearStaleSession(w http.ResponseWriter, r *http.Request, sessions session.Store) {
	if _, err := cookie.GetSession(r); err != nil {
		return
	}
	log.LogDebugWithFields("session", "Clearing unreadable session cookie", map[string]any{
		"path": r.URL.Path,
	})
	sessions.Clear(w)
}
