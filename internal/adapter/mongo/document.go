package mongo

import (
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// metarDocument is the persisted METAR layout. MongoDB keeps millisecond
// precision for dates.
type metarDocument struct {
	ID          string         `bson:"_id"`
	AirportICAO string         `bson:"airport_icao"`
	Content     map[string]any `bson:"content"`
	Time        time.Time      `bson:"time"`
	CreatedAt   time.Time      `bson:"created_at"`
}

type tafDocument struct {
	ID          string         `bson:"_id"`
	AirportICAO string         `bson:"airport_icao"`
	Content     map[string]any `bson:"content"`
	StartTime   time.Time      `bson:"start_time"`
	EndTime     time.Time      `bson:"end_time"`
	CreatedAt   time.Time      `bson:"created_at"`
}

func toMetarDocument(m domain.MetarReport) metarDocument {
	return metarDocument{
		ID:          m.ID,
		AirportICAO: m.AirportICAO,
		Content:     m.Content,
		Time:        domain.StoreTime(m.ObservedAt),
		CreatedAt:   domain.StoreTime(m.CreatedAt),
	}
}

func (d metarDocument) toDomain() domain.MetarReport {
	return domain.MetarReport{
		ID:          d.ID,
		AirportICAO: d.AirportICAO,
		Content:     normalizeContent(d.Content),
		ObservedAt:  d.Time.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func toTafDocument(t domain.TafReport) tafDocument {
	return tafDocument{
		ID:          t.ID,
		AirportICAO: t.AirportICAO,
		Content:     t.Content,
		StartTime:   domain.StoreTime(t.StartTime),
		EndTime:     domain.StoreTime(t.EndTime),
		CreatedAt:   domain.StoreTime(t.CreatedAt),
	}
}

func (d tafDocument) toDomain() domain.TafReport {
	return domain.TafReport{
		ID:          d.ID,
		AirportICAO: d.AirportICAO,
		Content:     normalizeContent(d.Content),
		StartTime:   d.StartTime.UTC(),
		EndTime:     d.EndTime.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func metarQuery(f domain.MetarFilter) bson.D {
	q := bson.D{{Key: "airport_icao", Value: f.AirportICAO}}
	q = appendRange(q, "created_at", time.Time{}, f.CreatedAtMax)
	q = appendRange(q, "time", f.ObservedAtMin, f.ObservedAtMax)
	return q
}

func tafQuery(f domain.TafFilter) bson.D {
	q := bson.D{{Key: "airport_icao", Value: f.AirportICAO}}
	q = appendRange(q, "created_at", time.Time{}, f.CreatedAtMax)
	q = appendRange(q, "start_time", time.Time{}, f.StartTimeMax)
	q = appendRange(q, "end_time", f.EndTimeMin, time.Time{})
	return q
}

// appendRange adds an inclusive {$gte, $lte} clause for the non-zero bounds.
func appendRange(q bson.D, field string, lo, hi time.Time) bson.D {
	var cond bson.D
	if !lo.IsZero() {
		cond = append(cond, bson.E{Key: "$gte", Value: domain.StoreTime(lo)})
	}
	if !hi.IsZero() {
		cond = append(cond, bson.E{Key: "$lte", Value: domain.StoreTime(hi)})
	}
	if len(cond) == 0 {
		return q
	}
	return append(q, bson.E{Key: field, Value: cond})
}

// normalizeContent converts decoded BSON containers back to the plain maps and
// slices the domain reads.
func normalizeContent(content map[string]any) domain.Content {
	if content == nil {
		return nil
	}
	out := make(domain.Content, len(content))
	for k, v := range content {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(normalizeContent(t))
	case bson.M:
		return map[string]any(normalizeContent(t))
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}

func normalizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalize(item)
	}
	return out
}
