package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/pipeline"
)

type validateCmd struct {
	Dir string `required:"" type:"existingdir" help:"Directory holding attendance.csv, rip_current.csv and shore_break.csv."`
	Now string `help:"Reference time (RFC3339). Defaults to 15:00 on the first day found."`
}

// phase tracks pass/fail for one validated source.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (v *validateCmd) Run(c *cli, e *env) error {
	loc, err := c.location()
	if err != nil {
		return err
	}
	opts := pipeline.DefaultOptions(loc)

	var phases []*phase
	for _, source := range []string{pipeline.SourceAttendance, pipeline.SourceRipCurrent, pipeline.SourceShoreBreak} {
		p := &phase{name: source}
		phases = append(phases, p)

		body, err := os.ReadFile(filepath.Join(v.Dir, source+".csv"))
		if err != nil {
			p.errorf("read: %v", err)
			continue
		}
		profile, _ := pipeline.LookupProfile(source)
		now, err := v.reference(profile, body, loc)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		report, err := pipeline.BuildReport(profile, body, now, opts)
		if err != nil {
			p.errorf("build report: %v", err)
			continue
		}
		checkReport(p, report, profile, now, opts)
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(e.out, "  %-14s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(e.out, "\n--- %s ---\n", p.name)
		for i, msg := range p.errors {
			fmt.Fprintf(e.out, "  [%d] %s\n", i+1, msg)
		}
	}

	if !allPassed {
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(e.out, "\nAll validations passed.")
	return nil
}

// reference picks the "now" a fixture is validated at.
func (v *validateCmd) reference(profile pipeline.Profile, body []byte, loc *time.Location) (time.Time, error) {
	if v.Now != "" {
		return parseNow(v.Now, loc)
	}
	raw, err := domain.DecodeCSV(body)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode: %w", err)
	}
	rows := domain.ParseRows(raw, profile.TimestampField, profile.FieldNames(), loc)
	domain.SortByInstant(rows)
	if len(rows) == 0 {
		return time.Time{}, fmt.Errorf("no parseable rows")
	}
	return domain.LocalMidnight(rows[0].Instant).Add(15 * time.Hour), nil
}

func checkReport(p *phase, r domain.HazardReport, profile pipeline.Profile, now time.Time, opts pipeline.EngineOptions) {
	if r.Stats.ParsedRows+r.Stats.Dropped != r.Stats.RawRows {
		p.errorf("stats: parsed %d + dropped %d != raw %d", r.Stats.ParsedRows, r.Stats.Dropped, r.Stats.RawRows)
	}
	if r.Stats.Dropped > 0 {
		p.errorf("stats: %d rows dropped from a generated fixture", r.Stats.Dropped)
	}
	checkHourly(p, r.Hourly, profile, now, opts)
	checkExtrema(p, r.Extrema, opts.Hours)
	for field, periods := range r.Periods {
		if len(periods.Morning) != len(periods.Afternoon) {
			p.errorf("periods %s: %d mornings vs %d afternoons", field, len(periods.Morning), len(periods.Afternoon))
		}
	}
}

func checkHourly(p *phase, rows []domain.Row, profile pipeline.Profile, now time.Time, opts pipeline.EngineOptions) {
	horizon := profile.HorizonDays
	if horizon == 0 {
		horizon = opts.HorizonDays
	}
	limit := domain.LocalMidnight(now).AddDate(0, 0, horizon)

	for i, row := range rows {
		if row.Instant.Minute() != 0 || row.Instant.Second() != 0 {
			p.errorf("hourly[%d] %s: not on the hour", i, row.Instant.Format(time.RFC3339))
		}
		if row.Instant.After(limit) {
			p.errorf("hourly[%d] %s: past horizon %s", i, row.Instant.Format(time.RFC3339), limit.Format(time.RFC3339))
		}
		if i > 0 && !rows[i-1].Instant.Before(row.Instant) {
			p.errorf("hourly[%d] %s: not strictly after previous bucket", i, row.Instant.Format(time.RFC3339))
		}
		for _, f := range profile.Fields {
			if _, ok := row.Values[f.Name]; !ok {
				p.errorf("hourly[%d]: missing field %s", i, f.Name)
			}
		}
	}
}

func checkExtrema(p *phase, extrema map[string]domain.ExtremaResult, hours domain.HourRange) {
	for field, ex := range extrema {
		if (ex.MaxValue == nil) != (ex.MaxHour == nil) || (ex.MinValue == nil) != (ex.MinHour == nil) {
			p.errorf("extrema %s: value and hour nullability differ", field)
			continue
		}
		if ex.MaxHour != nil && !hours.Contains(*ex.MaxHour) {
			p.errorf("extrema %s: max hour %d outside %d-%d", field, *ex.MaxHour, hours.Start, hours.End)
		}
		if ex.MinHour != nil && !hours.Contains(*ex.MinHour) {
			p.errorf("extrema %s: min hour %d outside %d-%d", field, *ex.MinHour, hours.Start, hours.End)
		}
		if ex.MaxValue != nil && ex.MinValue != nil && *ex.MaxValue < *ex.MinValue {
			p.errorf("extrema %s: max %g below min %g", field, *ex.MaxValue, *ex.MinValue)
		}
	}
}
