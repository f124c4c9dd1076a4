package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/met-update-db/internal/domain"
)

// ReportTransformer implements Transformer by parsing and validating the
// message payload for the kind its topic carries.
type ReportTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{logger: logger}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Report, error) {
	report, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Report{}, err
	}

	t.logger.Debug("report parsed",
		"kind", report.Kind,
		"airport", report.AirportICAO(),
		"topic", raw.Topic,
		"offset", raw.Offset,
	)
	return report, nil
}
