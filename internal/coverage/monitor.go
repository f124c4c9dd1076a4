// Package coverage periodically checks how far ahead the stored TAFs reach
// for a set of airports.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/couchcryptid/met-update-db/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

const checkTimeout = 30 * time.Second

// EndTimeSource reports the latest TAF validity end stored for an airport.
type EndTimeSource interface {
	LastTafEndTime(ctx context.Context, airport string) (time.Time, error)
}

// Status is the outcome of one airport check. Err is domain.ErrMETNotAvailable
// when the airport has no TAF at all.
type Status struct {
	Airport string
	EndTime time.Time
	Expired bool
	Err     error
}

// Monitor runs Check on a cron schedule.
type Monitor struct {
	source   EndTimeSource
	airports []string
	schedule string
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	cron     *cron.Cron
}

// New creates a Monitor for airports. schedule accepts standard five-field
// cron expressions and descriptors such as "@every 5m".
func New(source EndTimeSource, airports []string, schedule string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Monitor {
	return &Monitor{
		source:   source,
		airports: airports,
		schedule: schedule,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start registers the check job and starts the scheduler. With no airports
// configured nothing is scheduled.
func (m *Monitor) Start() error {
	if len(m.airports) == 0 {
		m.logger.Info("coverage monitor disabled, no airports configured")
		return nil
	}

	logger := cronLogger{m.logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(m.schedule, m.run); err != nil {
		return fmt.Errorf("coverage schedule %q: %w", m.schedule, err)
	}

	m.cron = c
	c.Start()
	m.logger.Info("coverage monitor started", "schedule", m.schedule, "airports", m.airports)
	return nil
}

// Stop halts the scheduler and waits for a running check to finish or ctx to
// expire.
func (m *Monitor) Stop(ctx context.Context) {
	if m.cron == nil {
		return
	}
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	m.Check(ctx)
}

// Check queries every airport once, updates the end-time gauge, and logs
// airports whose forecast horizon has already passed.
func (m *Monitor) Check(ctx context.Context) []Status {
	now := m.clock.Now().UTC()
	statuses := make([]Status, 0, len(m.airports))

	for _, airport := range m.airports {
		end, err := m.source.LastTafEndTime(ctx, airport)
		status := Status{Airport: airport, EndTime: end, Err: err}

		switch {
		case errors.Is(err, domain.ErrMETNotAvailable):
			m.metrics.TafLastEndTime.DeleteLabelValues(airport)
			m.logger.Warn("no TAF stored for airport", "airport", airport)
		case err != nil:
			m.logger.Error("TAF coverage check failed", "airport", airport, "error", err)
		default:
			m.metrics.TafLastEndTime.WithLabelValues(airport).Set(float64(end.Unix()))
			if end.Before(now) {
				status.Expired = true
				m.logger.Warn("TAF coverage expired",
					"airport", airport,
					"last_end_time", end,
					"behind", now.Sub(end).String(),
				)
			}
		}

		statuses = append(statuses, status)
	}
	return statuses
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
