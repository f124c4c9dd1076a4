package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WindResolver answers the wind queries exposed over HTTP.
type WindResolver interface {
	Resolve(ctx context.Context, airport string, ref time.Time) (domain.WindInput, domain.WindInputSource, error)
	LastTafEndTime(ctx context.Context, airport string) (time.Time, error)
}

// Server exposes the wind API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	resolver   WindResolver
	clock      clockwork.Clock
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 airport routes. The clock supplies the reference time when a wind
// request does not name one.
func NewServer(addr string, ready sharedobs.ReadinessChecker, resolver WindResolver, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		resolver: resolver,
		clock:    clock,
		validate: validator.New(),
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/airports/{icao}/wind", s.handleWind)
	mux.HandleFunc("GET /api/v1/airports/{icao}/taf/last-end-time", s.handleLastTafEndTime)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
