package domain

import "time"

// AlignToTimeline places source values onto timeline by local calendar hour.
//
// For each timeline instant the first source sample, in array order, whose
// (year, month, day, hour) matches is used. Later samples in the same hour are
// ignored rather than averaged. Slots with no match are nil. Source instants
// are compared in the timeline's location.
//
// The source is indexed once by bucket key, which gives the same result as a
// linear first-match scan per timeline entry.
func AlignToTimeline(timeline []time.Time, source Series) []*float64 {
	out := make([]*float64, len(timeline))
	if len(timeline) == 0 {
		return out
	}
	loc := timeline[0].Location()

	first := make(map[BucketKey]*float64, len(source))
	for _, s := range source {
		k := KeyOf(s.Instant.In(loc))
		if _, seen := first[k]; seen {
			continue
		}
		var v *float64
		if s.Value != nil {
			v = Float(*s.Value)
		}
		first[k] = v
	}

	for i, t := range timeline {
		if v := first[KeyOf(t.In(loc))]; v != nil {
			out[i] = Float(*v)
		}
	}
	return out
}

// AlignValues is AlignToTimeline over parallel instant/value arrays, the shape
// forecast payloads arrive in. Extra entries in the longer array are ignored.
func AlignValues(timeline, instants []time.Time, values []float64) []*float64 {
	n := min(len(instants), len(values))
	source := make(Series, n)
	for i := 0; i < n; i++ {
		source[i] = Sample{Instant: instants[i], Value: Float(values[i])}
	}
	return AlignToTimeline(timeline, source)
}

// AlignSeries returns source re-sampled onto timeline as a Series.
func AlignSeries(timeline []time.Time, source Series) Series {
	values := AlignToTimeline(timeline, source)
	out := make(Series, len(timeline))
	for i, t := range timeline {
		out[i] = Sample{Instant: t, Value: values[i]}
	}
	return out
}
