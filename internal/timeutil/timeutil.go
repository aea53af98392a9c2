package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// UnknownMinutes is returned for missing or unparseable wall-clock strings.
// It is larger than any valid minute-of-day (23:59 -> 1439) so malformed
// entries sort after well-formed ones instead of erroring.
const UnknownMinutes = 24 * 60

// Timestamp is the document store's native timestamp shape: epoch seconds
// plus nanoseconds, as written by the web clients.
type Timestamp struct {
	Seconds int64 `dynamodbav:"seconds" json:"seconds"`
	Nanos   int64 `dynamodbav:"nanoseconds" json:"nanoseconds"`
}

// Now returns the current instant as a store timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts a time.Time into a store timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int64(t.Nanosecond())}
}

// Time converts the timestamp back into a time.Time in the local zone.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanos)
}

// ParseClockMinutes converts a 12-hour wall-clock string ("H:MM AM|PM") into
// minutes since midnight. "12:00 AM" maps to 0 and "12:00 PM" to 720. Input
// without a ':' (empty, "N/A", free text) yields UnknownMinutes.
func ParseClockMinutes(clock string) int {
	clock = strings.TrimSpace(clock)
	if !strings.Contains(clock, ":") {
		return UnknownMinutes
	}

	fields := strings.Fields(clock)
	hm := strings.SplitN(fields[0], ":", 2)
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return UnknownMinutes
	}
	minute := 0
	if len(hm) == 2 {
		m, err := strconv.Atoi(hm[1])
		if err != nil {
			return UnknownMinutes
		}
		minute = m
	}

	if len(fields) > 1 {
		switch strings.ToUpper(fields[1]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}

	total := hour*60 + minute
	if total < 0 || total > 1439 {
		return UnknownMinutes
	}
	return total
}

// NormalizeDate unifies the heterogeneous date shapes that reach the engine:
// a native time.Time, an ISO/RFC3339 string, a store Timestamp, or the
// map[string]any{"seconds","nanoseconds"} shape produced when a document is
// decoded into an untyped value. The second return reports whether a date
// could be recovered; unrecognized shapes return (zero, false), never panic.
func NormalizeDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case Timestamp:
		return d.Time(), true
	case *Timestamp:
		if d == nil {
			return time.Time{}, false
		}
		return d.Time(), true
	case string:
		return parseDateString(d)
	case map[string]any:
		return fromEpochMap(d)
	default:
		return time.Time{}, false
	}
}

// DateOnly truncates a time to midnight in its own location, for calendar
// comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar date,
// evaluated in a's location.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b.In(a.Location())))
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpochMap(m map[string]any) (time.Time, bool) {
	secs, ok := asInt64(m["seconds"])
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := asInt64(m["nanoseconds"])
	return time.Unix(secs, nanos), true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
