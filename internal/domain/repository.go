package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateReport is returned by inserts when the report ID already exists.
var ErrDuplicateReport = errors.New("duplicate report id")

// ReportRepository is the storage port the resolver and the ingestion
// pipeline depend on. Reports are append-only.
type ReportRepository interface {
	// InsertMetar persists a METAR. The caller supplies the ID.
	InsertMetar(ctx context.Context, report MetarReport) error

	// InsertTaf persists a TAF. The caller supplies the ID.
	InsertTaf(ctx context.Context, report TafReport) error

	// FindMetars returns METARs matching the filter, newest CreatedAt first.
	FindMetars(ctx context.Context, filter MetarFilter) ([]MetarReport, error)

	// FindTafs returns TAFs matching the filter, newest CreatedAt first, or
	// latest EndTime first when OrderByEndTime is set.
	FindTafs(ctx context.Context, filter TafFilter) ([]TafReport, error)
}

// MetarFilter selects METARs. Zero time bounds are unbounded; all bounds are
// inclusive. Limit <= 0 returns every match.
type MetarFilter struct {
	AirportICAO   string
	CreatedAtMax  time.Time
	ObservedAtMin time.Time
	ObservedAtMax time.Time
	Limit         int
}

// Matches reports whether m satisfies the filter.
func (f MetarFilter) Matches(m MetarReport) bool {
	return m.AirportICAO == f.AirportICAO &&
		notAfter(m.CreatedAt, f.CreatedAtMax) &&
		notBefore(m.ObservedAt, f.ObservedAtMin) &&
		notAfter(m.ObservedAt, f.ObservedAtMax)
}

// TafFilter selects TAFs. Zero time bounds are unbounded; all bounds are
// inclusive. Limit <= 0 returns every match.
type TafFilter struct {
	AirportICAO    string
	CreatedAtMax   time.Time
	StartTimeMax   time.Time
	EndTimeMin     time.Time
	OrderByEndTime bool
	Limit          int
}

// Matches reports whether t satisfies the filter.
func (f TafFilter) Matches(t TafReport) bool {
	return t.AirportICAO == f.AirportICAO &&
		notAfter(t.CreatedAt, f.CreatedAtMax) &&
		notAfter(t.StartTime, f.StartTimeMax) &&
		notBefore(t.EndTime, f.EndTimeMin)
}

func notAfter(t, limit time.Time) bool {
	return limit.IsZero() || !t.After(limit)
}

func notBefore(t, limit time.Time) bool {
	return limit.IsZero() || !t.Before(limit)
}
