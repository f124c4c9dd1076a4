package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Content keys read by the resolver.
const (
	KeyWindDirection = "wind_direction"
	KeyWindSpeed     = "wind_speed"
	KeyForecast      = "forecast"
)

// ExtractWindValue reads content[key]["value"] as a float64. It reports false,
// and never fails, when the key or the value is missing, null, or not numeric.
func ExtractWindValue(content Content, key string) (float64, bool) {
	wrapper, ok := asMap(content[key])
	if !ok {
		return 0, false
	}
	return toFloat(wrapper["value"])
}

// ForecastSegments returns the TAF forecast list. Entries that are not
// mappings are dropped.
func ForecastSegments(content Content) []Content {
	var items []any
	switch v := content[KeyForecast].(type) {
	case []any:
		items = v
	case []Content:
		return v
	case []map[string]any:
		segments := make([]Content, len(v))
		for i := range v {
			segments[i] = v[i]
		}
		return segments
	default:
		return nil
	}

	segments := make([]Content, 0, len(items))
	for _, item := range items {
		if m, ok := asMap(item); ok {
			segments = append(segments, m)
		}
	}
	return segments
}

// WindFromTafSegments scans forecast segments in order and returns the value of
// key from the first segment whose [start_time, end_time] window contains ref.
// Segments without a value are skipped. When no segment covers ref, the last
// value seen during the scan is returned.
func WindFromTafSegments(segments []Content, ref time.Time, key string) (float64, bool) {
	var backup float64
	var haveBackup bool

	for _, segment := range segments {
		value, ok := ExtractWindValue(segment, key)
		if !ok {
			continue
		}
		if start, end, ok := segmentWindow(segment); ok && !ref.Before(start) && !ref.After(end) {
			return value, true
		}
		backup, haveBackup = value, true
	}

	return backup, haveBackup
}

// segmentWindow parses start_time.dt and end_time.dt of a forecast segment.
func segmentWindow(segment Content) (time.Time, time.Time, bool) {
	start, err := timeField(segment, "start_time")
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := timeField(segment, "end_time")
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Content:
		return m, true
	default:
		return nil, false
	}
}

// toFloat coerces JSON and BSON numeric representations and numeric strings.
// Unlike a lenient float conversion it does not read booleans as 1 or 0 and
// rejects "nan" and "inf" strings as well as NaN and infinite values, so a
// wind field holding any of these counts as absent.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
