package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// HourRange is an inclusive local hour-of-day range.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DefaultHourRange covers the beach day, 11:00 to 20:00.
var DefaultHourRange = HourRange{Start: 11, End: 20}

// DefaultSnapshotHour is the hour reported by SnapshotAt in dashboards.
const DefaultSnapshotHour = 11

// Contains reports whether hour lies in r.
func (r HourRange) Contains(hour int) bool {
	return hour >= r.Start && hour <= r.End
}

// Validate checks that r is a non-empty range inside a day.
func (r HourRange) Validate() error {
	if r.Start < 0 || r.End > 23 || r.Start > r.End {
		return fmt.Errorf("invalid hour range %d-%d", r.Start, r.End)
	}
	return nil
}

// ExtremaResult is the max/min of one series over a day's hour range, the
// local hour each first occurs at, and companion values read at the same index.
type ExtremaResult struct {
	MaxValue       *float64            `json:"max_value"`
	MaxHour        *int                `json:"max_hour"`
	MinValue       *float64            `json:"min_value"`
	MinHour        *int                `json:"min_hour"`
	AuxiliaryAtMax map[string]*float64 `json:"auxiliary_at_max"`
	AuxiliaryAtMin map[string]*float64 `json:"auxiliary_at_min"`
}

// FindExtrema computes the extrema of s restricted to day and hours.
//
// Ties resolve to the earliest sample. Companions must be index-aligned with s
// (parallel columns of the same rows): a companion's value at the primary's
// max/min index is reported as is, never re-searched. If s has no non-nil
// value in range, every output is nil.
func FindExtrema(s Series, companions map[string]Series, hours HourRange, day CalendarDay) ExtremaResult {
	res := ExtremaResult{
		AuxiliaryAtMax: make(map[string]*float64, len(companions)),
		AuxiliaryAtMin: make(map[string]*float64, len(companions)),
	}
	for name := range companions {
		res.AuxiliaryAtMax[name] = nil
		res.AuxiliaryAtMin[name] = nil
	}

	// window holds indices into s; values/positions hold its non-nil subset.
	var window []int
	for i, smp := range s {
		if DayOf(smp.Instant) == day && hours.Contains(smp.Instant.Hour()) {
			window = append(window, i)
		}
	}
	var values []float64
	var positions []int
	for _, i := range window {
		if s[i].Value != nil {
			values = append(values, *s[i].Value)
			positions = append(positions, i)
		}
	}
	if len(values) == 0 {
		return res
	}

	maxIdx := positions[floats.MaxIdx(values)]
	minIdx := positions[floats.MinIdx(values)]

	res.MaxValue = Float(*s[maxIdx].Value)
	res.MinValue = Float(*s[minIdx].Value)
	maxHour, minHour := s[maxIdx].Instant.Hour(), s[minIdx].Instant.Hour()
	res.MaxHour = &maxHour
	res.MinHour = &minHour

	for name, c := range companions {
		res.AuxiliaryAtMax[name] = valueAt(c, maxIdx)
		res.AuxiliaryAtMin[name] = valueAt(c, minIdx)
	}
	return res
}

// ExtremaRequest names one primary series and its companions for FindAllExtrema.
type ExtremaRequest struct {
	Name       string
	Series     Series
	Companions map[string]Series
}

// FindAllExtrema runs FindExtrema for every request over the same day and
// hour range, keyed by request name.
func FindAllExtrema(reqs []ExtremaRequest, hours HourRange, day CalendarDay) map[string]ExtremaResult {
	out := make(map[string]ExtremaResult, len(reqs))
	for _, r := range reqs {
		out[r.Name] = FindExtrema(r.Series, r.Companions, hours, day)
	}
	return out
}

// SnapshotAt reads every field from the first row whose local hour equals
// hour. If no row matches, every field is nil.
func SnapshotAt(rows []Row, fields []string, hour int) map[string]*float64 {
	out := make(map[string]*float64, len(fields))
	for _, f := range fields {
		out[f] = nil
	}
	for _, r := range rows {
		if r.Instant.Hour() != hour {
			continue
		}
		for _, f := range fields {
			if v, ok := r.Values[f]; ok {
				out[f] = Float(v)
			}
		}
		break
	}
	return out
}

func valueAt(s Series, i int) *float64 {
	if i < 0 || i >= len(s) || s[i].Value == nil {
		return nil
	}
	return Float(*s[i].Value)
}
