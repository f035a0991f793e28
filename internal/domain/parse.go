package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawRow is one undecoded record keyed by column name. CSV cells arrive as
// strings; forecast JSON cells arrive as float64, string or nil.
type RawRow map[string]any

// timestampLayouts are tried in order. Layouts without a zone are read in the
// configured location; zoned layouts are converted into it.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006/01/02 15:04:05", false},
	{"2006/01/02 15:04", false},
	{"2006-01-02", false},
}

// ParseRows turns raw records into typed rows in loc.
//
// Rows whose timestamp cannot be parsed are dropped without error. Value
// fields that are missing or not numeric become 0, not "missing". The output
// keeps input order; callers sort once with SortByInstant before aggregating.
func ParseRows(raw []RawRow, timestampField string, valueFields []string, loc *time.Location) []Row {
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		ts, ok := parseInstant(r[timestampField], loc)
		if !ok {
			continue
		}
		values := make(map[string]float64, len(valueFields))
		for _, f := range valueFields {
			values[f] = parseNumberOrZero(r[f])
		}
		rows = append(rows, Row{Instant: ts, Values: values})
	}
	return rows
}

// ParseInstant parses a timestamp string in loc. It reports false for
// anything that is not a recognisable calendar date.
func ParseInstant(s string, loc *time.Location) (time.Time, bool) {
	return parseInstant(s, loc)
}

func parseInstant(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch tv := v.(type) {
	case time.Time:
		if tv.IsZero() {
			return time.Time{}, false
		}
		return tv.In(loc), true
	case string:
		s := strings.TrimSpace(tv)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range timestampLayouts {
			if l.zoned {
				if t, err := time.Parse(l.layout, s); err == nil {
					return t.In(loc), true
				}
				continue
			}
			if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseNumberOrZero casts a cell to float64, returning 0 for anything that is
// not a finite number.
func parseNumberOrZero(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = parseFloatOrZero(n)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
