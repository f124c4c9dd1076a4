package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/met-update-db/internal/domain"
)

// RepositoryLoader implements BatchLoader by inserting each report into a
// domain.ReportRepository.
type RepositoryLoader struct {
	repo   domain.ReportRepository
	logger *slog.Logger
}

// NewLoader creates a RepositoryLoader over repo.
func NewLoader(repo domain.ReportRepository, logger *slog.Logger) *RepositoryLoader {
	return &RepositoryLoader{repo: repo, logger: logger}
}

// LoadBatch inserts reports in order and stops at the first store error. A
// report whose id is already stored was delivered before and is skipped.
func (l *RepositoryLoader) LoadBatch(ctx context.Context, reports []domain.Report) error {
	for _, report := range reports {
		err := l.insert(ctx, report)
		if errors.Is(err, domain.ErrDuplicateReport) {
			l.logger.Debug("report already stored", "kind", report.Kind, "airport", report.AirportICAO())
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s for %s: %w", report.Kind, report.AirportICAO(), err)
		}
	}
	return nil
}

func (l *RepositoryLoader) insert(ctx context.Context, report domain.Report) error {
	switch {
	case report.Kind == domain.KindMetar && report.Metar != nil:
		return l.repo.InsertMetar(ctx, *report.Metar)
	case report.Kind == domain.KindTaf && report.Taf != nil:
		return l.repo.InsertTaf(ctx, *report.Taf)
	default:
		return fmt.Errorf("report of kind %q has no payload", report.Kind)
	}
}
