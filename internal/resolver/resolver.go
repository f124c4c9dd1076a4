// Package resolver selects the METAR or TAF applicable at a reference instant
// and derives the wind input from it.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/couchcryptid/met-update-db/internal/observability"
)

// Options holds the resolution policy.
type Options struct {
	// MetarMaxAge bounds how old an observation may be relative to the
	// reference time. Zero means domain.DefaultMetarMaxAge.
	MetarMaxAge time.Duration
}

// Resolver answers wind queries against a report store. It keeps no state
// between calls.
type Resolver struct {
	repo        domain.ReportRepository
	metarMaxAge time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Resolver over repo.
func New(repo domain.ReportRepository, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	maxAge := opts.MetarMaxAge
	if maxAge <= 0 {
		maxAge = domain.DefaultMetarMaxAge
	}
	return &Resolver{
		repo:        repo,
		metarMaxAge: maxAge,
		logger:      logger,
		metrics:     metrics,
	}
}

// SelectTaf returns the most recently ingested TAF for airport that was known
// at ref and whose validity window contains ref, or nil. ref is compared at
// domain.TimePrecision.
func (r *Resolver) SelectTaf(ctx context.Context, airport string, ref time.Time) (*domain.TafReport, error) {
	ref = domain.StoreTime(ref)
	tafs, err := r.repo.FindTafs(ctx, domain.TafFilter{
		AirportICAO:  airport,
		CreatedAtMax: ref,
		StartTimeMax: ref,
		EndTimeMin:   ref,
	})
	if err != nil {
		return nil, err
	}
	return latest(tafs, func(t domain.TafReport) time.Time { return t.CreatedAt }), nil
}

// SelectMetar returns the most recently ingested METAR for airport that was
// known at ref and observed no earlier than ref minus the maximum age, or nil.
// ref is compared at domain.TimePrecision.
func (r *Resolver) SelectMetar(ctx context.Context, airport string, ref time.Time) (*domain.MetarReport, error) {
	ref = domain.StoreTime(ref)
	metars, err := r.repo.FindMetars(ctx, domain.MetarFilter{
		AirportICAO:   airport,
		CreatedAtMax:  ref,
		ObservedAtMin: ref.Add(-r.metarMaxAge),
		ObservedAtMax: ref,
	})
	if err != nil {
		return nil, err
	}
	return latest(metars, func(m domain.MetarReport) time.Time { return m.CreatedAt }), nil
}

// latest reduces reports to the one with the greatest key. The first report
// wins ties. Returns nil for an empty slice.
func latest[T any](reports []T, key func(T) time.Time) *T {
	if len(reports) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(reports); i++ {
		if key(reports[i]).After(key(reports[best])) {
			best = i
		}
	}
	return &reports[best]
}
