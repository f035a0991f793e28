package domain

import (
	"fmt"
	"time"
)

const dayLength = 24 * time.Hour

// Anchor decides where a prefix window's horizon is measured from.
type Anchor int

const (
	// AnchoredAtMidnight measures the horizon from local midnight of the anchor day.
	AnchoredAtMidnight Anchor = iota
	// AnchoredAtNow measures the horizon from the anchor instant itself.
	AnchoredAtNow
)

// Limit returns the inclusive upper bound of a horizonDays window.
// Days are fixed 24h spans, not calendar days.
func (a Anchor) Limit(anchor time.Time, horizonDays int) time.Time {
	base := anchor
	if a == AnchoredAtMidnight {
		base = LocalMidnight(anchor)
	}
	return base.Add(time.Duration(horizonDays) * dayLength)
}

// WindowPrefix keeps every item at or before the horizon limit. There is no
// lower bound: samples already in the past stay in the result.
func WindowPrefix[T Timed](items []T, anchor time.Time, horizonDays int, a Anchor) []T {
	limit := a.Limit(anchor, horizonDays)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !it.At().After(limit) {
			out = append(out, it)
		}
	}
	return out
}

// WindowFromToday returns the contiguous slice starting at the first item at or
// after local midnight of now, ending before the first item more than
// horizonDays*24h past that midnight. Items must be sorted ascending.
func WindowFromToday[T Timed](items []T, now time.Time, horizonDays int) []T {
	today := LocalMidnight(now)
	horizon := time.Duration(horizonDays) * dayLength

	start := -1
	for i, it := range items {
		if !it.At().Before(today) {
			start = i
			break
		}
	}
	if start < 0 {
		return make([]T, 0)
	}

	out := make([]T, 0, len(items)-start)
	for _, it := range items[start:] {
		if it.At().Sub(today) > horizon {
			break
		}
		out = append(out, it)
	}
	return out
}

// WindowPolicy names one of the windowing strategies used by report sources.
type WindowPolicy string

const (
	WindowPrefixMidnight WindowPolicy = "prefix_midnight"
	WindowPrefixNow      WindowPolicy = "prefix_now"
	WindowStartAnchored  WindowPolicy = "start_anchored"
)

// ParseWindowPolicy validates a policy name.
func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch p := WindowPolicy(s); p {
	case WindowPrefixMidnight, WindowPrefixNow, WindowStartAnchored:
		return p, nil
	default:
		return "", fmt.Errorf("unknown window policy %q", s)
	}
}

// ApplyWindow dispatches to the window function selected by policy.
func ApplyWindow[T Timed](items []T, now time.Time, horizonDays int, policy WindowPolicy) []T {
	switch policy {
	case WindowPrefixNow:
		return WindowPrefix(items, now, horizonDays, AnchoredAtNow)
	case WindowStartAnchored:
		return WindowFromToday(items, now, horizonDays)
	default:
		return WindowPrefix(items, now, horizonDays, AnchoredAtMidnight)
	}
}
