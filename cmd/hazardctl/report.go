package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/pipeline"
)

type reportCmd struct {
	Profile string `required:"" help:"Source profile id (see 'profiles')."`
	File    string `required:"" type:"existingfile" help:"Payload file to read."`
	Now     string `help:"Reference time (RFC3339). Defaults to the current time."`
	Horizon int    `default:"0" help:"Horizon in days; 0 keeps the profile default."`
}

func (r *reportCmd) Run(c *cli, e *env) error {
	loc, err := c.location()
	if err != nil {
		return err
	}
	profile, ok := pipeline.LookupProfile(r.Profile)
	if !ok {
		return fmt.Errorf("unknown profile %q", r.Profile)
	}
	now, err := parseNow(r.Now, loc)
	if err != nil {
		return err
	}
	if r.Horizon < 0 || r.Horizon > 16 {
		return fmt.Errorf("--horizon must be within 0..16, got %d", r.Horizon)
	}
	if r.Horizon > 0 {
		profile.HorizonDays = r.Horizon
	}

	body, err := os.ReadFile(r.File)
	if err != nil {
		return err
	}
	report, err := pipeline.BuildReport(profile, body, now, pipeline.DefaultOptions(loc))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func parseNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return domain.Now(loc), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return t.In(loc), nil
}

type profilesCmd struct{}

func (profilesCmd) Run(e *env) error {
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tFORMAT\tWINDOW\tFIELDS")
	for _, p := range pipeline.BuiltinProfiles() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", p.Source, p.Format, p.Window, p.FieldNames())
	}
	return tw.Flush()
}
