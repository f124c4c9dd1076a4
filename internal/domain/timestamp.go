package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO-8601 timestamp or a Unix epoch in seconds and
// returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// timeField reads content[key]["dt"] as a timestamp.
func timeField(content Content, key string) (time.Time, error) {
	wrapper, ok := asMap(content[key])
	if !ok {
		return time.Time{}, fmt.Errorf("%s.dt: missing", key)
	}
	s, ok := wrapper["dt"].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%s.dt: not a string", key)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s.dt: %w", key, err)
	}
	return t, nil
}
