package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/met-update-db/internal/adapter/httpadapter"
	"github.com/couchcryptid/met-update-db/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2022, 5, 30, 12, 0, 0, 0, time.UTC)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockResolver struct {
	wind    domain.WindInput
	source  domain.WindInputSource
	endTime time.Time
	err     error

	gotAirport string
	gotRef     time.Time
}

func (m *mockResolver) Resolve(_ context.Context, airport string, ref time.Time) (domain.WindInput, domain.WindInputSource, error) {
	m.gotAirport, m.gotRef = airport, ref
	return m.wind, m.source, m.err
}

func (m *mockResolver) LastTafEndTime(_ context.Context, airport string) (time.Time, error) {
	m.gotAirport = airport
	return m.endTime, m.err
}

func newTestServer(readyErr error, resolver *mockResolver) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, resolver, clockwork.NewFakeClockAt(now), logger)
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestReadyz(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])

	rec = get(t, newTestServer(fmt.Errorf("not ready yet"), &mockResolver{}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWind_DefaultsToNow(t *testing.T) {
	resolver := &mockResolver{wind: domain.WindInput{Direction: 180, Speed: 10}, source: domain.SourceMetar}
	rec := get(t, newTestServer(nil, resolver), "/api/v1/airports/eham/wind")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"direction":180,"speed":10,"source":"METAR","reference_time":"2022-05-30T12:00:00Z"}`, rec.Body.String())
	assert.Equal(t, "EHAM", resolver.gotAirport)
	assert.Equal(t, now, resolver.gotRef)
}

func TestWind_ReferenceTime(t *testing.T) {
	tests := []struct {
		name string
		at   string
		want time.Time
	}{
		{"rfc3339", "2022-05-30T10:30:00Z", time.Date(2022, 5, 30, 10, 30, 0, 0, time.UTC)},
		{"offset", "2022-05-30T12:30:00%2B02:00", time.Date(2022, 5, 30, 10, 30, 0, 0, time.UTC)},
		{"unescaped plus offset", "2022-05-30T12:30:00+02:00", time.Date(2022, 5, 30, 10, 30, 0, 0, time.UTC)},
		{"epoch seconds", "1653906600", time.Date(2022, 5, 30, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{wind: domain.WindInput{Direction: 100, Speed: 8}, source: domain.SourceTaf}
			rec := get(t, newTestServer(nil, resolver), "/api/v1/airports/EHAM/wind?at="+tt.at)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, resolver.gotRef)
			assert.Equal(t, "TAF", decode(t, rec)["source"])
		})
	}
}

func TestWind_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"short icao", "/api/v1/airports/AMS/wind"},
		{"punctuation", "/api/v1/airports/EH-M/wind"},
		{"bad at", "/api/v1/airports/EHAM/wind?at=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{}
			rec := get(t, newTestServer(nil, resolver), tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
			assert.Empty(t, resolver.gotAirport)
		})
	}
}

func TestWind_NotAvailable(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{err: domain.ErrMETNotAvailable}), "/api/v1/airports/EHAM/wind")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"meteorological data not available"}`, rec.Body.String())
}

func TestWind_StoreError(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{err: errors.New("server selection timeout")}), "/api/v1/airports/EHAM/wind")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "server selection")
}

func TestLastTafEndTime(t *testing.T) {
	end := time.Date(2022, 6, 30, 22, 0, 0, 0, time.UTC)
	resolver := &mockResolver{endTime: end}
	rec := get(t, newTestServer(nil, resolver), "/api/v1/airports/EHAM/taf/last-end-time")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"end_time":"2022-06-30T22:00:00Z"}`, rec.Body.String())
}

func TestLastTafEndTime_NotAvailable(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{err: domain.ErrMETNotAvailable}), "/api/v1/airports/EHAM/taf/last-end-time")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
