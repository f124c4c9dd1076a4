package coverage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/couchcryptid/met-update-db/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

type stubSource struct {
	ends  map[string]time.Time
	errs  map[string]error
	calls atomic.Int64
}

func (s *stubSource) LastTafEndTime(_ context.Context, airport string) (time.Time, error) {
	s.calls.Add(1)
	if err := s.errs[airport]; err != nil {
		return time.Time{}, err
	}
	end, ok := s.ends[airport]
	if !ok {
		return time.Time{}, domain.ErrMETNotAvailable
	}
	return end, nil
}

func newMonitor(source EndTimeSource, airports []string, schedule string) (*Monitor, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(source, airports, schedule, clockwork.NewFakeClockAt(now), logger, metrics), metrics
}

func TestMonitor_Check(t *testing.T) {
	storeErr := errors.New("timeout")
	source := &stubSource{
		ends: map[string]time.Time{
			"EHAM": now.Add(30 * time.Hour),
			"EBBR": now.Add(-time.Hour),
		},
		errs: map[string]error{"LFPG": storeErr},
	}
	m, metrics := newMonitor(source, []string{"EHAM", "EBBR", "EDDF", "LFPG"}, "@every 5m")

	statuses := m.Check(context.Background())
	require.Len(t, statuses, 4)

	assert.Equal(t, Status{Airport: "EHAM", EndTime: now.Add(30 * time.Hour)}, statuses[0])
	assert.True(t, statuses[1].Expired)
	assert.ErrorIs(t, statuses[2].Err, domain.ErrMETNotAvailable)
	assert.ErrorIs(t, statuses[3].Err, storeErr)
	assert.False(t, statuses[3].Expired)

	assert.InDelta(t, float64(now.Add(30*time.Hour).Unix()), testutil.ToFloat64(metrics.TafLastEndTime.WithLabelValues("EHAM")), 0)
	assert.InDelta(t, float64(now.Add(-time.Hour).Unix()), testutil.ToFloat64(metrics.TafLastEndTime.WithLabelValues("EBBR")), 0)
}

func TestMonitor_Check_RemovesGaugeWhenNoTaf(t *testing.T) {
	source := &stubSource{ends: map[string]time.Time{"EHAM": now}}
	m, metrics := newMonitor(source, []string{"EHAM"}, "@every 5m")

	m.Check(context.Background())
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.TafLastEndTime))

	delete(source.ends, "EHAM")
	m.Check(context.Background())
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.TafLastEndTime))
}

func TestMonitor_StartRunsSchedule(t *testing.T) {
	source := &stubSource{ends: map[string]time.Time{"EHAM": now}}
	m, _ := newMonitor(source, []string{"EHAM"}, "@every 1s")

	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Stop(context.Background()) })

	assert.Eventually(t, func() bool { return source.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestMonitor_StartWithoutAirports(t *testing.T) {
	m, _ := newMonitor(&stubSource{}, nil, "not a schedule")
	require.NoError(t, m.Start())
	m.Stop(context.Background())
}

func TestMonitor_InvalidSchedule(t *testing.T) {
	m, _ := newMonitor(&stubSource{}, []string{"EHAM"}, "every five minutes")
	assert.ErrorContains(t, m.Start(), "coverage schedule")
}
