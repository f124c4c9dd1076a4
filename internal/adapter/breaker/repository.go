// Package breaker guards a report store with a circuit breaker so a failing
// database fails requests fast instead of stalling every caller.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/couchcryptid/met-update-db/internal/observability"
	"github.com/sony/gobreaker"
)

// Settings configures the breaker.
type Settings struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	OpenTimeout      time.Duration // how long the breaker stays open before probing
}

// Repository decorates a domain.ReportRepository. Errors from the wrapped
// store are returned as-is; gobreaker.ErrOpenState is returned while open.
type Repository struct {
	inner domain.ReportRepository
	cb    *gobreaker.CircuitBreaker
}

// New wraps inner with a circuit breaker.
func New(inner domain.ReportRepository, s Settings, logger *slog.Logger, metrics *observability.Metrics) *Repository {
	threshold := uint32(s.FailureThreshold)
	if threshold == 0 {
		threshold = 5
	}

	state := metrics.StoreBreakerState.WithLabelValues(s.Name)
	state.Set(0)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Cancelled callers and duplicate IDs do not indicate an unhealthy store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrDuplicateReport)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			state.Set(float64(to))
		},
	})

	return &Repository{inner: inner, cb: cb}
}

// State returns the current breaker state.
func (r *Repository) State() gobreaker.State {
	return r.cb.State()
}

func (r *Repository) InsertMetar(ctx context.Context, report domain.MetarReport) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.InsertMetar(ctx, report)
	})
	return err
}

func (r *Repository) InsertTaf(ctx context.Context, report domain.TafReport) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.InsertTaf(ctx, report)
	})
	return err
}

func (r *Repository) FindMetars(ctx context.Context, filter domain.MetarFilter) ([]domain.MetarReport, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.FindMetars(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.MetarReport), nil
}

func (r *Repository) FindTafs(ctx context.Context, filter domain.TafFilter) ([]domain.TafReport, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.FindTafs(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.TafReport), nil
}
