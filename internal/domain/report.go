package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMETNotAvailable is returned when no usable meteorological data exists for
// an airport (and reference time, where one applies).
var ErrMETNotAvailable = errors.New("meteorological data not available")

// DefaultMetarMaxAge is how far an observation may lag the reference time and
// still be used.
const DefaultMetarMaxAge = 2 * time.Hour

// TimePrecision is the resolution report times are stored and compared at.
// It matches the BSON date type.
const TimePrecision = time.Millisecond

// StoreTime returns t in UTC truncated to TimePrecision.
func StoreTime(t time.Time) time.Time {
	return t.UTC().Truncate(TimePrecision)
}

// Content is the decoded report document. Its shape is owned by the upstream
// decoder and is not validated beyond the fields the resolver reads.
type Content map[string]any

// MetarReport is a stored routine observation.
type MetarReport struct {
	ID          string    `json:"id" validate:"required"`
	AirportICAO string    `json:"airport_icao" validate:"required,len=4,alphanum,uppercase"`
	Content     Content   `json:"content" validate:"required"`
	ObservedAt  time.Time `json:"time" validate:"required"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
}

// TafReport is a stored terminal aerodrome forecast.
type TafReport struct {
	ID          string    `json:"id" validate:"required"`
	AirportICAO string    `json:"airport_icao" validate:"required,len=4,alphanum,uppercase"`
	Content     Content   `json:"content" validate:"required"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtefield=StartTime"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
}

// ReportKind distinguishes the two report types on ingestion.
type ReportKind string

const (
	KindMetar ReportKind = "metar"
	KindTaf   ReportKind = "taf"
)

// Report carries exactly one of Metar or Taf, selected by Kind.
type Report struct {
	Kind  ReportKind
	Metar *MetarReport
	Taf   *TafReport
}

// AirportICAO returns the airport of whichever report is set.
func (r Report) AirportICAO() string {
	switch r.Kind {
	case KindMetar:
		if r.Metar != nil {
			return r.Metar.AirportICAO
		}
	case KindTaf:
		if r.Taf != nil {
			return r.Taf.AirportICAO
		}
	}
	return ""
}

// WindInput is a normalized wind reading: direction in degrees and speed in
// the unit of the source report.
type WindInput struct {
	Direction float64 `json:"direction"`
	Speed     float64 `json:"speed"`
}

// WindInputSource records which report type produced a WindInput.
type WindInputSource string

const (
	SourceMetar WindInputSource = "METAR"
	SourceTaf   WindInputSource = "TAF"
)

// RawEvent represents an unprocessed message from one of the source topics.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Kind      ReportKind
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
