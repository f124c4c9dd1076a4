package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ParseRawEvent decodes a message from a source topic into a Report. The
// airport comes from the "airport" header when present, else the message key.
func ParseRawEvent(raw RawEvent) (Report, error) {
	airport := raw.Headers["airport"]
	if airport == "" {
		airport = string(raw.Key)
	}

	switch raw.Kind {
	case KindMetar:
		metar, err := ParseMetar(airport, raw.Value)
		if err != nil {
			return Report{}, err
		}
		return Report{Kind: KindMetar, Metar: &metar}, nil
	case KindTaf:
		taf, err := ParseTaf(airport, raw.Value)
		if err != nil {
			return Report{}, err
		}
		return Report{Kind: KindTaf, Taf: &taf}, nil
	default:
		return Report{}, fmt.Errorf("parse raw event: unknown report kind %q", raw.Kind)
	}
}

// ParseMetar builds a MetarReport from a decoded METAR JSON document.
func ParseMetar(airport string, payload []byte) (MetarReport, error) {
	content, err := decodeContent(payload)
	if err != nil {
		return MetarReport{}, fmt.Errorf("parse metar: %w", err)
	}

	observed, err := timeField(content, "time")
	if err != nil {
		return MetarReport{}, fmt.Errorf("parse metar: %w", err)
	}

	report := MetarReport{
		ID:          newID(),
		AirportICAO: normalizeICAO(airport),
		Content:     content,
		ObservedAt:  observed,
		CreatedAt:   createdAt(content),
	}
	if err := report.Validate(); err != nil {
		return MetarReport{}, fmt.Errorf("parse metar: %w", err)
	}
	return report, nil
}

// ParseTaf builds a TafReport from a decoded TAF JSON document.
func ParseTaf(airport string, payload []byte) (TafReport, error) {
	content, err := decodeContent(payload)
	if err != nil {
		return TafReport{}, fmt.Errorf("parse taf: %w", err)
	}

	start, err := timeField(content, "start_time")
	if err != nil {
		return TafReport{}, fmt.Errorf("parse taf: %w", err)
	}
	end, err := timeField(content, "end_time")
	if err != nil {
		return TafReport{}, fmt.Errorf("parse taf: %w", err)
	}

	report := TafReport{
		ID:          newID(),
		AirportICAO: normalizeICAO(airport),
		Content:     content,
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   createdAt(content),
	}
	if err := report.Validate(); err != nil {
		return TafReport{}, fmt.Errorf("parse taf: %w", err)
	}
	return report, nil
}

// Validate checks the fields the store requires.
func (m MetarReport) Validate() error {
	return validationError(validate.Struct(m))
}

// Validate checks the fields the store requires and that the window is ordered.
func (t TafReport) Validate() error {
	return validationError(validate.Struct(t))
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid report: %s", strings.Join(msgs, ", "))
}

func decodeContent(payload []byte) (Content, error) {
	var content Content
	if err := json.Unmarshal(payload, &content); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.New("empty document")
	}
	return content, nil
}

// createdAt reads meta.timestamp, falling back to the ingestion clock.
func createdAt(content Content) time.Time {
	meta, ok := asMap(content["meta"])
	if !ok {
		return Now()
	}
	s, ok := meta["timestamp"].(string)
	if !ok {
		return Now()
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return Now()
	}
	return t
}

func normalizeICAO(airport string) string {
	return strings.ToUpper(strings.TrimSpace(airport))
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
