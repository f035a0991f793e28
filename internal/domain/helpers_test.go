package domain

import (
	"time"
)

// testLoc is a fixed +02:00 zone so tests do not depend on the host tzdata.
var testLoc = time.FixedZone("CEST", 2*60*60)

func at(month time.Month, d, hour, minute int) time.Time {
	return time.Date(2025, month, d, hour, minute, 0, 0, testLoc)
}

func series(points ...Sample) Series { return Series(points) }

func sample(t time.Time, v float64) Sample {
	return Sample{Instant: t, Value: Float(v)}
}

func nullSample(t time.Time) Sample {
	return Sample{Instant: t}
}

func row(t time.Time, kv ...any) Row {
	values := make(map[string]float64, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i].(string)] = toFloat(kv[i+1])
	}
	return Row{Instant: t, Values: values}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	panic("unsupported test value")
}

func stamps[T Timed](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.At().Format("01-02T15:04")
	}
	return out
}

func values(s Series) []any {
	out := make([]any, len(s))
	for i, smp := range s {
		if smp.Value == nil {
			out[i] = nil
			continue
		}
		out[i] = *smp.Value
	}
	return out
}
