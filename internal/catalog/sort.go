package catalog

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"eventbuddy/internal/domain"
)

// SortByDatetimeAscending returns a copy of events stably ordered by datetime.
func SortByDatetimeAscending(events []*domain.Event) []*domain.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b *domain.Event) int {
		return a.Datetime.Compare(b.Datetime)
	})
	return out
}

type asTimer interface {
	AsTime() time.Time
}

type timer interface {
	Time() time.Time
}

type toDater interface {
	ToDate() time.Time
}

// naiveLayouts are accepted for strings without a zone, e.g. timestamps rendered by row_to_json.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// NormalizeInstant converts a datetime that may arrive in several shapes into a time.Time.
// Accepted: time.Time, *time.Time, timestamp wrappers exposing AsTime, Time or ToDate,
// {"seconds","nanoseconds"} maps (with or without a leading underscore), RFC 3339 or
// zone-less ISO strings, and Unix seconds as integers or floats.
func NormalizeInstant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case asTimer:
		return t.AsTime(), true
	case timer:
		return t.Time(), true
	case toDater:
		return t.ToDate(), true
	case string:
		return parseInstantString(t)
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	case float64:
		sec := int64(t)
		return time.Unix(sec, int64((t-float64(sec))*1e9)).UTC(), true
	case map[string]any:
		return fromSecondsMap(t)
	}
	return time.Time{}, false
}

func parseInstantString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

func fromSecondsMap(m map[string]any) (time.Time, bool) {
	secs, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds", "nanos")
	return time.Unix(secs, nanos).UTC(), true
}

func numberField(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return int64(n), true
		case int64:
			return n, true
		case int:
			return int64(n), true
		}
	}
	return 0, false
}
