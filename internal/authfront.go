package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgellow/auth-front/internal/authapi"
	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/crypto"
	"github.com/dgellow/auth-front/internal/idp"
	"github.com/dgellow/auth-front/internal/log"
	"github.com/dgellow/auth-front/internal/metrics"
	"github.com/dgellow/auth-front/internal/server"
	"github.com/dgellow/auth-front/internal/session"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	oauthStateTTL   = 10 * time.Minute
)

// AuthFront represents the complete auth front end application
type AuthFront struct {
	config        config.Config
	handler       http.Handler
	httpServer    *server.HTTPServer
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
}

type options struct {
	httpClient *http.Client
	provider   idp.Provider
	providerOK bool
}

// Option customizes how NewAuthFront wires its dependencies
type Option func(*options)

// WithHTTPClient sets the client used for auth API calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithIdentityProvider replaces the provider built from config.Google.
// A nil provider disables Google sign-in.
func WithIdentityProvider(p idp.Provider) Option {
	return func(o *options) {
		o.provider = p
		o.providerOK = true
	}
}

// NewAuthFront creates the application with all dependencies built
func NewAuthFront(cfg config.Config, opts ...Option) (*AuthFront, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log.LogInfoWithFields("authfront", "Building auth front end", map[string]any{
		"baseURL":    cfg.Server.BaseURL,
		"apiBaseURL": cfg.API.BaseURL,
		"google":     cfg.Google != nil,
		"metrics":    cfg.Metrics.Enabled,
	})

	key := []byte(cfg.Session.EncryptionKey)
	encryptor, err := crypto.NewEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create session encryptor: %w", err)
	}

	provider := o.provider
	if !o.providerOK {
		provider, err = idp.NewProvider(cfg.Google)
		if err != nil {
			return nil, fmt.Errorf("failed to create identity provider: %w", err)
		}
	}

	m := metrics.New()

	clientOpts := []authapi.Option{
		authapi.WithTimeout(cfg.API.Timeout),
		authapi.WithObserver(m),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, authapi.WithHTTPClient(o.httpClient))
	}
	api := authapi.NewClient(cfg.API.BaseURL, clientOpts...)

	deps := dependencies{
		api:        api,
		sessions:   session.NewCookieStore(encryptor, cfg.Session.CookieMaxAge),
		flashes:    session.NewFlashStore(deriveKey(key, "flash")),
		stateToken: crypto.NewTokenSigner(deriveKey(key, "oauth-state"), oauthStateTTL),
		provider:   provider,
		metrics:    m,
	}

	handler := buildHTTPHandler(cfg, deps)

	app := &AuthFront{
		config:     cfg,
		handler:    handler,
		httpServer: server.NewHTTPServer(handler, cfg.Server.Addr, cfg.API.Timeout),
		metrics:    m,
	}
	if cfg.Metrics.Enabled {
		app.metricsServer = metrics.NewServer(cfg.Metrics.Addr, m)
	}
	return app, nil
}

// Handler returns the browser-facing handler
func (a *AuthFront) Handler() http.Handler {
	return a.handler
}

// Metrics returns the application's metric set
func (a *AuthFront) Metrics() *metrics.Metrics {
	return a.metrics
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or a server
// fails, then shuts everything down within 30s.
func (a *AuthFront) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.LogInfoWithFields("authfront", "Starting auth front end", map[string]any{
		"addr": a.config.Server.Addr,
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if a.metricsServer != nil {
		g.Go(func() error {
			if err := a.metricsServer.Start(); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		log.LogInfoWithFields("authfront", "Starting graceful shutdown", map[string]any{
			"timeout": shutdownTimeout.String(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var firstErr error
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			firstErr = err
		}
		if a.metricsServer != nil {
			if err := a.metricsServer.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	if err := g.Wait(); err != nil {
		log.LogErrorWithFields("authfront", "Shut down with error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.LogInfoWithFields("authfront", "Application shutdown complete", nil)
	return nil
}

type dependencies struct {
	api        server.AuthClient
	sessions   session.Store
	flashes    *session.FlashStore
	stateToken crypto.TokenSigner
	provider   idp.Provider
	metrics    *metrics.Metrics
}

// buildHTTPHandler creates the complete HTTP handler with all routing and middleware
func buildHTTPHandler(cfg config.Config, deps dependencies) http.Handler {
	mux := http.NewServeMux()

	pages := server.NewPageHandlers(deps.api, deps.sessions, deps.flashes, deps.provider, deps.metrics, cfg.Server.BrandName)
	oauthHandlers := server.NewOAuthHandlers(pages, deps.stateToken)
	sessionHandlers := server.NewSessionHandlers(deps.sessions)

	requireSession := server.NewRequireSessionMiddleware(deps.sessions)

	mux.Handle("GET "+server.PathHealth, server.NewHealthHandler())

	mux.HandleFunc("GET "+server.PathLogin+"{$}", pages.LoginPage)
	mux.HandleFunc("POST "+server.PathLogin+"{$}", pages.LoginSubmit)
	mux.HandleFunc("GET "+server.PathRegister, pages.RegisterPage)
	mux.HandleFunc("POST "+server.PathRegister, pages.RegisterSubmit)
	mux.Handle("GET "+server.PathDashboard, server.ChainMiddleware(http.HandlerFunc(pages.Dashboard), requireSession))
	mux.HandleFunc("POST "+server.PathLogout, pages.Logout)

	mux.HandleFunc("GET "+server.PathOAuthStart, oauthHandlers.StartHandler)
	mux.HandleFunc("GET "+server.PathOAuthCallback, oauthHandlers.CallbackHandler)
	mux.HandleFunc("POST "+server.PathOAuthToken, oauthHandlers.TokenHandler)

	mux.HandleFunc("GET "+server.PathAPISession, sessionHandlers.GetHandler)
	mux.HandleFunc("DELETE "+server.PathAPISession, sessionHandlers.DeleteHandler)

	return server.ChainMiddleware(mux,
		server.NewSecurityHeadersMiddleware(),
		server.NewRecoverMiddleware("http"),
		server.NewMetricsMiddleware(deps.metrics),
		server.NewLoggerMiddleware("http"),
	)
}

// deriveKey derives an independent signing key for purpose from the session key
func deriveKey(key []byte, purpose string) []byte {
	return []byte(crypto.SignData(purpose, key))
}
