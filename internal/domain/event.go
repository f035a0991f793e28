package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format identifies how a payload body is encoded.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatForecast Format = "forecast"
)

// RawPayload is one fetched source document, before decoding.
type RawPayload struct {
	Source    string
	Format    Format
	Body      []byte
	Origin    string // file path or URL, for logs
	FetchedAt time.Time
}

// ParseStats counts what the parser and aggregator did with a payload.
type ParseStats struct {
	RawRows    int `json:"raw_rows"`
	ParsedRows int `json:"parsed_rows"`
	Dropped    int `json:"dropped_rows"`
	Buckets    int `json:"buckets"`
}

// HazardReport is the derived, render-ready view of one source: the hourly
// series inside the horizon plus the aggregates dashboards display.
type HazardReport struct {
	Source      string                   `json:"source"`
	GeneratedAt time.Time                `json:"generated_at"`
	Timezone    string                   `json:"timezone"`
	HorizonDays int                      `json:"horizon_days"`
	Window      WindowPolicy             `json:"window_policy"`
	Day         string                   `json:"day"`
	HourRange   HourRange                `json:"hour_range"`
	Units       map[string]string        `json:"units,omitempty"`
	Hourly      []Row                    `json:"hourly"`
	Periods     map[string]DailyPeriods  `json:"periods,omitempty"`
	Extrema     map[string]ExtremaResult `json:"extrema,omitempty"`
	Snapshot    map[string]*float64      `json:"snapshot,omitempty"`
	Aligned     map[string]Series        `json:"aligned,omitempty"`
	Stats       ParseStats               `json:"stats"`

	// Error is the single message shown when the latest refresh failed.
	// Data fields then hold the previous successful refresh, if any.
	Error string `json:"error,omitempty"`
}

// OutputEvent is the serialized form destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeReport encodes a report as an OutputEvent keyed by source.
func SerializeReport(r HazardReport) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize hazard report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.Source),
		Value: data,
		Headers: map[string]string{
			"source":       r.Source,
			"generated_at": r.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
