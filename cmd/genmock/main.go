// Command genmock writes deterministic attendance, rip-current and
// shore-break CSV fixtures at 15-minute resolution. Each file is run through
// the same engine the service uses and a summary is printed for updating
// test assertions.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -start 2025-07-14 -days 4
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/pipeline"
)

const step = 15 * time.Minute

type fixture struct {
	source string
	value  string // primary measure column
	gen    func(rng *rand.Rand, t time.Time) (float64, int)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory")
	start := flag.String("start", "2025-07-14", "first day (YYYY-MM-DD, local)")
	days := flag.Int("days", 4, "number of days to generate")
	tz := flag.String("tz", "Europe/Paris", "IANA timezone of the timestamps")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *days < 1 {
		return fmt.Errorf("-days must be >= 1, got %d", *days)
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	first, err := time.ParseInLocation("2006-01-02", *start, loc)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	fixtures := []fixture{
		{source: pipeline.SourceAttendance, value: "Attendance", gen: attendance},
		{source: pipeline.SourceRipCurrent, value: "Velocity", gen: ripCurrent},
		{source: pipeline.SourceShoreBreak, value: "Index", gen: shoreBreak},
	}

	// Summaries are computed as of 15:00 on the first day.
	now := first.Add(15 * time.Hour)
	opts := pipeline.DefaultOptions(loc)

	for i, f := range fixtures {
		rng := rand.New(rand.NewPCG(*seed, uint64(i)))
		body, rows, err := generate(f, rng, first, *days)
		if err != nil {
			return fmt.Errorf("%s: %w", f.source, err)
		}
		path := filepath.Join(*out, f.source+".csv")
		if err := os.WriteFile(path, body, 0o600); err != nil {
			return err
		}
		log.Printf("wrote %s: %d rows", path, rows)

		profile, ok := pipeline.LookupProfile(f.source)
		if !ok {
			return fmt.Errorf("no profile for %s", f.source)
		}
		report, err := pipeline.BuildReport(profile, body, now, opts)
		if err != nil {
			return fmt.Errorf("%s: build report: %w", f.source, err)
		}
		printSummary(report, f.value)
	}
	return nil
}

func generate(f fixture, rng *rand.Rand, first time.Time, days int) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Datetime", f.value, "Hazard_Level"}); err != nil {
		return nil, 0, err
	}

	end := first.AddDate(0, 0, days)
	rows := 0
	for t := first; t.Before(end); t = t.Add(step) {
		v, level := f.gen(rng, t)
		record := []string{
			t.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(v, 'f', 2, 64),
			strconv.Itoa(level),
		}
		if err := w.Write(record); err != nil {
			return nil, 0, err
		}
		rows++
	}
	w.Flush()
	return buf.Bytes(), rows, w.Error()
}

// attendance follows a bell curve peaking mid-afternoon.
func attendance(rng *rand.Rand, t time.Time) (float64, int) {
	h := float64(t.Hour()) + float64(t.Minute())/60
	peak := 400 * math.Exp(-math.Pow(h-15.5, 2)/8)
	v := math.Max(0, peak+rng.NormFloat64()*15)
	return v, levelFor(v, 50, 150, 300)
}

// ripCurrent strengthens with the falling tide, modelled as a 12.4h cycle.
func ripCurrent(rng *rand.Rand, t time.Time) (float64, int) {
	hours := float64(t.Unix()) / 3600
	v := math.Max(0, 0.8+0.6*math.Sin(2*math.Pi*hours/12.42)+rng.NormFloat64()*0.05)
	return v, levelFor(v, 0.5, 1.0, 1.3)
}

// shoreBreak tracks an afternoon swell with a little noise.
func shoreBreak(rng *rand.Rand, t time.Time) (float64, int) {
	h := float64(t.Hour())
	v := math.Max(0, 3+2*math.Sin(math.Pi*(h-6)/12)+rng.NormFloat64()*0.3)
	return v, levelFor(v, 2, 3.5, 4.5)
}

func levelFor(v, low, mid, high float64) int {
	switch {
	case v >= high:
		return 4
	case v >= mid:
		return 3
	case v >= low:
		return 2
	default:
		return 1
	}
}

func printSummary(r domain.HazardReport, field string) {
	fmt.Printf("\n=== %s (day %s) ===\n", r.Source, r.Day)
	fmt.Printf("Raw rows: %d, parsed: %d, dropped: %d\n", r.Stats.RawRows, r.Stats.ParsedRows, r.Stats.Dropped)
	fmt.Printf("Hourly buckets in window: %d\n", len(r.Hourly))
	if len(r.Hourly) > 0 {
		fmt.Printf("Window: %s .. %s\n",
			r.Hourly[0].Instant.Format(time.RFC3339), r.Hourly[len(r.Hourly)-1].Instant.Format(time.RFC3339))
	}
	for name, ex := range r.Extrema {
		fmt.Printf("Extrema %s: max=%s at %s, min=%s at %s\n",
			name, formatFloat(ex.MaxValue), formatHour(ex.MaxHour), formatFloat(ex.MinValue), formatHour(ex.MinHour))
	}
	if p, ok := r.Periods[field]; ok {
		for i := range p.Morning {
			fmt.Printf("Periods %s: am=%s pm=%s\n",
				p.Morning[i].Instant.Format("2006-01-02"), formatFloat(p.Morning[i].Value), formatFloat(p.Afternoon[i].Value))
		}
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatHour(h *int) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%02d:00", *h)
}
