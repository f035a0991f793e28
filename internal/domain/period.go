package domain

import (
	"math"
	"slices"
)

// DailyPeriods holds one morning and one afternoon mean per calendar day.
// Both series are index-aligned and stamped at local midnight.
type DailyPeriods struct {
	Morning   Series `json:"morning"`
	Afternoon Series `json:"afternoon"`
}

type halfDay struct {
	amSum, pmSum     float64
	amCount, pmCount int
}

// SplitMorningAfternoon partitions s into AM (hour < 12) and PM (hour >= 12)
// per local day and reports each half's mean rounded to the nearest integer.
// Every day seen in s appears in both outputs; a half with no values is 0,
// not nil. Nil samples mark their day as seen but do not count toward a mean.
func SplitMorningAfternoon(s Series) DailyPeriods {
	days := make(map[CalendarDay]*halfDay)
	var order []CalendarDay
	for _, smp := range s {
		d := DayOf(smp.Instant)
		h, ok := days[d]
		if !ok {
			h = &halfDay{}
			days[d] = h
			order = append(order, d)
		}
		if smp.Value == nil {
			continue
		}
		if smp.Instant.Hour() < 12 {
			h.amSum += *smp.Value
			h.amCount++
		} else {
			h.pmSum += *smp.Value
			h.pmCount++
		}
	}

	slices.SortFunc(order, func(a, b CalendarDay) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	out := DailyPeriods{
		Morning:   make(Series, 0, len(order)),
		Afternoon: make(Series, 0, len(order)),
	}
	if len(s) == 0 {
		return out
	}
	loc := s[0].Instant.Location()
	for _, d := range order {
		h := days[d]
		midnight := d.Midnight(loc)
		out.Morning = append(out.Morning, Sample{Instant: midnight, Value: Float(roundedMean(h.amSum, h.amCount))})
		out.Afternoon = append(out.Afternoon, Sample{Instant: midnight, Value: Float(roundedMean(h.pmSum, h.pmCount))})
	}
	return out
}

func roundedMean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(sum / float64(n))
}
