// Package domain is the beach-hazard time-series engine: it normalizes
// heterogeneous hourly datasets onto one local hourly timeline and derives the
// aggregates the hazard dashboards show.
//
// # Data Sources
//
// Two payload shapes feed the engine:
//
//	CSV datasets (attendance, rip-current velocity, shore-break index):
//	  Datetime,Attendance,Hazard_Level
//	  2025-05-01 10:15:00,42.5,2
//	  Sub-hourly rows; Hazard_Level is an ordinal code 0-4.
//
//	Hourly forecast JSON (weather and marine endpoints):
//	  {"hourly": {"time": ["2025-05-01T10:00", ...], "wave_height": [0.8, ...]},
//	   "hourly_units": {"wave_height": "m"}}
//	  Parallel arrays; time[i] belongs to every <measure>[i].
//
// # Local Time
//
// All bucketing, windowing and hour-of-day filtering use local calendar fields
// (year, month, day, hour) in one explicitly configured *time.Location, never
// UTC hours and never the host timezone. Hazard windows are defined in local
// terms ("11:00-20:00 on the beach"). Timestamps without an offset are read in
// that location; timestamps with an offset are converted into it.
//
// # Pipeline
//
//	ParseRows -> SortByInstant -> AggregateByHour -> AlignToTimeline (optional)
//	  -> WindowPrefix | WindowFromToday -> SplitMorningAfternoon | FindExtrema | SnapshotAt
//
// Every step is a pure function of its arguments. "Now" is always passed in;
// nothing here reads the wall clock except Now, which callers use at the edge.
//
// # Missing Data
//
//	Rows with an unparseable timestamp are dropped silently.
//	Numeric cells that are empty or not numeric become 0 (not missing).
//	Alignment and extrema with no data yield nil values, never errors.
//	Only a payload that cannot be fetched or decoded fails, as ErrSourceUnavailable.
//
// # Rounding
//
// Bucket means are rounded to two decimals for continuous measures and to the
// nearest integer for hazard levels. A hazard level is therefore the rounded
// mean of the codes in its hour, not their mode: averaging 1 and 4 gives 3
// (2.5 rounds half away from zero). This mirrors the long-standing dashboard
// behavior and is kept until product decides otherwise.
package domain
