package pipeline

import (
	"slices"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
)

// Field is one value column of a source and how its hourly mean is rounded.
type Field struct {
	Name     string          `json:"name"`
	Rounding domain.Rounding `json:"rounding"`
}

// ExtremaMeasure asks for the daily max/min of Field, reporting Companions
// read at the same row.
type ExtremaMeasure struct {
	Field      string   `json:"field"`
	Companions []string `json:"companions,omitempty"`
}

// AlignSpec re-samples Field of the Source report onto this profile's hourly
// timeline. The result is stored under "<source>.<field>".
type AlignSpec struct {
	Source string `json:"source"`
	Field  string `json:"field"`
}

// Key names the aligned series in HazardReport.Aligned.
func (a AlignSpec) Key() string { return a.Source + "." + a.Field }

// Profile maps one dataset onto the engine.
type Profile struct {
	Source         string              `json:"source"`
	Format         domain.Format       `json:"format"`
	TimestampField string              `json:"timestamp_field"`
	Fields         []Field             `json:"fields"`
	HorizonDays    int                 `json:"horizon_days,omitempty"` // 0 uses the pipeline default
	Window         domain.WindowPolicy `json:"window_policy"`
	PeriodField    string              `json:"period_field,omitempty"`
	Extrema        []ExtremaMeasure    `json:"extrema,omitempty"`
	Snapshot       []string            `json:"snapshot,omitempty"`
	AlignWith      []AlignSpec         `json:"align_with,omitempty"`
}

// FieldNames returns the value column names in declaration order.
func (p Profile) FieldNames() []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Name
	}
	return out
}

// Rounding returns the per-field rounding map for AggregateByHour.
func (p Profile) Rounding() map[string]domain.Rounding {
	out := make(map[string]domain.Rounding, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Name] = f.Rounding
	}
	return out
}

// Source ids of the built-in profiles.
const (
	SourceAttendance = "attendance"
	SourceRipCurrent = "rip_current"
	SourceShoreBreak = "shore_break"
	SourceWeather    = "weather"
	SourceMarine     = "marine"
)

const csvTimestamp = "Datetime"

func csvProfile(source, measure string) Profile {
	return Profile{
		Source:         source,
		Format:         domain.FormatCSV,
		TimestampField: csvTimestamp,
		Fields: []Field{
			{Name: measure, Rounding: domain.RoundCents},
			{Name: "Hazard_Level", Rounding: domain.RoundInteger},
		},
		Window: domain.WindowPrefixMidnight,
		Extrema: []ExtremaMeasure{
			{Field: measure},
			{Field: "Hazard_Level"},
		},
	}
}

// BuiltinProfiles returns the profiles of every supported dataset.
func BuiltinProfiles() []Profile {
	attendance := csvProfile(SourceAttendance, "Attendance")
	attendance.PeriodField = "Attendance"
	attendance.AlignWith = []AlignSpec{{Source: SourceWeather, Field: "temperature_2m"}}

	return []Profile{
		attendance,
		csvProfile(SourceRipCurrent, "Velocity"),
		csvProfile(SourceShoreBreak, "Index"),
		{
			Source:         SourceWeather,
			Format:         domain.FormatForecast,
			TimestampField: domain.ForecastTimeField,
			Fields: []Field{
				{Name: "temperature_2m"},
				{Name: "uv_index"},
				{Name: "wind_speed_10m"},
				{Name: "wind_gusts_10m"},
				{Name: "wind_direction_10m"},
			},
			Window: domain.WindowStartAnchored,
			Extrema: []ExtremaMeasure{
				{Field: "temperature_2m"},
				{Field: "uv_index"},
				{Field: "wind_speed_10m", Companions: []string{"wind_direction_10m"}},
				{Field: "wind_gusts_10m", Companions: []string{"wind_direction_10m"}},
			},
			Snapshot: []string{"temperature_2m", "uv_index", "wind_speed_10m", "wind_gusts_10m", "wind_direction_10m"},
		},
		{
			Source:         SourceMarine,
			Format:         domain.FormatForecast,
			TimestampField: domain.ForecastTimeField,
			Fields: []Field{
				{Name: "wave_height"},
				{Name: "wave_period"},
				{Name: "wave_direction"},
			},
			Window: domain.WindowStartAnchored,
			Extrema: []ExtremaMeasure{
				{Field: "wave_height", Companions: []string{"wave_period", "wave_direction"}},
			},
			Snapshot: []string{"wave_height", "wave_period", "wave_direction"},
		},
	}
}

// LookupProfile finds a built-in profile by source id.
func LookupProfile(source string) (Profile, bool) {
	profiles := BuiltinProfiles()
	i := slices.IndexFunc(profiles, func(p Profile) bool { return p.Source == source })
	if i < 0 {
		return Profile{}, false
	}
	return profiles[i], true
}
