package domain

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Rounding is applied to a bucket mean after averaging.
type Rounding int

const (
	// RoundNone keeps the raw mean.
	RoundNone Rounding = iota
	// RoundCents rounds to two decimals, for continuous measures
	// (attendance %, current velocity, shore-break index).
	RoundCents
	// RoundInteger rounds to the nearest integer, for ordinal codes such as
	// hazard level 0-4. This is a rounded mean, not a mode.
	RoundInteger
)

// Apply rounds v according to r.
func (r Rounding) Apply(v float64) float64 {
	switch r {
	case RoundCents:
		return math.Round(v*100) / 100
	case RoundInteger:
		return math.Round(v)
	default:
		return v
	}
}

func (r Rounding) String() string {
	switch r {
	case RoundCents:
		return "cents"
	case RoundInteger:
		return "integer"
	default:
		return "none"
	}
}

type bucket struct {
	key    BucketKey
	start  time.Time
	values map[string][]float64
}

// AggregateByHour groups rows by local calendar hour and reduces every field
// of each bucket to its arithmetic mean, rounded per field (fields absent from
// rounding are left unrounded). Output holds one row per bucket that had at
// least one input, stamped at the bucket start and sorted ascending.
//
// Zero input rows yield an empty, non-nil slice.
func AggregateByHour(rows []Row, rounding map[string]Rounding) []Row {
	buckets := make(map[BucketKey]*bucket)
	for _, r := range rows {
		k := KeyOf(r.Instant)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{
				key:    k,
				start:  k.Start(r.Instant.Location()),
				values: make(map[string][]float64),
			}
			buckets[k] = b
		}
		for f, v := range r.Values {
			b.values[f] = append(b.values[f], v)
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	slices.SortFunc(ordered, func(a, b *bucket) int {
		return a.start.Compare(b.start)
	})

	out := make([]Row, 0, len(ordered))
	for _, b := range ordered {
		values := make(map[string]float64, len(b.values))
		for f, xs := range b.values {
			values[f] = rounding[f].Apply(stat.Mean(xs, nil))
		}
		out = append(out, Row{Instant: b.start, Values: values})
	}
	return out
}

// AggregateSeries is AggregateByHour for a single column. Nil samples still
// open their bucket; a bucket holding only nil samples yields a nil value.
func AggregateSeries(s Series, r Rounding) Series {
	const field = "value"
	rows := make([]Row, len(s))
	for i, smp := range s {
		rows[i] = Row{Instant: smp.Instant, Values: map[string]float64{}}
		if smp.Value != nil {
			rows[i].Values[field] = *smp.Value
		}
	}
	return Column(AggregateByHour(rows, map[string]Rounding{field: r}), field)
}
