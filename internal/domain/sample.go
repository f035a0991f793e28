package domain

import (
	"slices"
	"time"
)

// Timed is anything positioned on the timeline. Window and sort helpers are
// generic over it so they serve both single-column Series and multi-column rows.
type Timed interface {
	At() time.Time
}

// Sample is one point of a single-column series. A nil Value means "no data",
// which consumers must keep distinct from a real 0 reading.
type Sample struct {
	Instant time.Time `json:"instant"`
	Value   *float64  `json:"value"`
}

// At implements Timed.
func (s Sample) At() time.Time { return s.Instant }

// Series is an ordered sequence of samples, non-decreasing by Instant.
type Series []Sample

// Row is one record carrying several parallel measures that share an instant,
// e.g. attendance and hazard level from the same CSV line.
type Row struct {
	Instant time.Time          `json:"instant"`
	Values  map[string]float64 `json:"values"`
}

// At implements Timed.
func (r Row) At() time.Time { return r.Instant }

// Float returns a pointer to v, for building nullable values.
func Float(v float64) *float64 {
	return &v
}

// Column projects one field of rows into a Series. Rows that lack the field
// yield a nil value so the series stays index-aligned with rows.
func Column(rows []Row, field string) Series {
	out := make(Series, len(rows))
	for i, r := range rows {
		out[i].Instant = r.Instant
		if v, ok := r.Values[field]; ok {
			out[i].Value = Float(v)
		}
	}
	return out
}

// Instants returns the timeline of items.
func Instants[T Timed](items []T) []time.Time {
	out := make([]time.Time, len(items))
	for i, it := range items {
		out[i] = it.At()
	}
	return out
}

// SortByInstant sorts items ascending by instant. The sort is stable so rows
// sharing an instant keep their source order, which the first-match alignment
// relies on.
func SortByInstant[T Timed](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return a.At().Compare(b.At())
	})
}

// OnDay keeps the items whose local calendar day is day.
func OnDay[T Timed](items []T, day CalendarDay) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if DayOf(it.At()) == day {
			out = append(out, it)
		}
	}
	return out
}
