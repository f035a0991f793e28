package domain

import (
	"fmt"
	"time"
)

// BucketKey identifies one local calendar hour. Two instants share a bucket
// iff year, month, day and hour all match in the same location.
type BucketKey struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
}

// KeyOf returns the bucket key of t using t's own location.
func KeyOf(t time.Time) BucketKey {
	y, m, d := t.Date()
	return BucketKey{Year: y, Month: m, Day: d, Hour: t.Hour()}
}

// Start returns the first instant of the bucket in loc (minutes and seconds zeroed).
func (k BucketKey) Start(loc *time.Location) time.Time {
	return time.Date(k.Year, k.Month, k.Day, k.Hour, 0, 0, 0, loc)
}

func (k BucketKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d", k.Year, int(k.Month), k.Day, k.Hour)
}

// CalendarDay is a local (year, month, day) triple.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the local calendar day of t.
func DayOf(t time.Time) CalendarDay {
	y, m, d := t.Date()
	return CalendarDay{Year: y, Month: m, Day: d}
}

// Midnight returns 00:00 of the day in loc.
func (d CalendarDay) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDay) Before(other CalendarDay) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// LocalMidnight truncates t to 00:00 of its local day, keeping t's location.
// Unlike t.Truncate(24*time.Hour) this respects the location's UTC offset.
func LocalMidnight(t time.Time) time.Time {
	return DayOf(t).Midnight(t.Location())
}
