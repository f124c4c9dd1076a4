// Package memory is an in-process report store. It backs tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/couchcryptid/met-update-db/internal/domain"
)

// Repository is a concurrency-safe, append-only implementation of
// domain.ReportRepository.
type Repository struct {
	mu     sync.RWMutex
	metars []domain.MetarReport
	tafs   []domain.TafReport
	ids    map[string]struct{}
}

// New creates an empty Repository.
func New() *Repository {
	return &Repository{ids: make(map[string]struct{})}
}

func (r *Repository) InsertMetar(_ context.Context, report domain.MetarReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.claimID(report.ID); err != nil {
		return err
	}
	report.ObservedAt = domain.StoreTime(report.ObservedAt)
	report.CreatedAt = domain.StoreTime(report.CreatedAt)
	r.metars = append(r.metars, report)
	return nil
}

func (r *Repository) InsertTaf(_ context.Context, report domain.TafReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.claimID(report.ID); err != nil {
		return err
	}
	report.StartTime = domain.StoreTime(report.StartTime)
	report.EndTime = domain.StoreTime(report.EndTime)
	report.CreatedAt = domain.StoreTime(report.CreatedAt)
	r.tafs = append(r.tafs, report)
	return nil
}

func (r *Repository) FindMetars(ctx context.Context, filter domain.MetarFilter) ([]domain.MetarReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var out []domain.MetarReport
	for _, m := range r.metars {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limit(out, filter.Limit), nil
}

func (r *Repository) FindTafs(ctx context.Context, filter domain.TafFilter) ([]domain.TafReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var out []domain.TafReport
	for _, t := range r.tafs {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if filter.OrderByEndTime {
			return out[i].EndTime.After(out[j].EndTime)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limit(out, filter.Limit), nil
}

// Len returns the number of stored METARs and TAFs.
func (r *Repository) Len() (metars, tafs int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metars), len(r.tafs)
}

func (r *Repository) claimID(id string) error {
	if _, ok := r.ids[id]; ok {
		return domain.ErrDuplicateReport
	}
	r.ids[id] = struct{}{}
	return nil
}

func limit[T any](reports []T, n int) []T {
	if n > 0 && len(reports) > n {
		return reports[:n]
	}
	return reports
}
