package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgellow/auth-front/internal/log"
)

const (
	// DefaultAddr is the default address for the metrics server.
	DefaultAddr = ":9090"

	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server serves /metrics on a dedicated listener, away from browser traffic.
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer creates a metrics server for m
func NewServer(addr string, m *Metrics) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

// Start blocks serving metrics until Shutdown is called
func (s *Server) Start() error {
	log.LogInfoWithFields("metrics", "Starting metrics server", map[string]any{
		"addr": s.addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server
func (s *Server) Shutdown(ctx context.Context) error {
	log.LogInfoWithFields("metrics", "Shutting down metrics server", nil)
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the server's mux for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured address for the metrics server.
func (s *Server) Addr() string {
	return s.addr
}
