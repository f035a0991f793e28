package domain

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ForecastTimeField is the timestamp column of decoded forecast payloads.
const ForecastTimeField = "time"

// DecodeCSV reads a header-led CSV payload into raw rows keyed by header name.
// A header-only or empty payload yields no rows. Short rows leave their
// trailing columns unset.
func DecodeCSV(body []byte) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make(RawRow, len(header))
		for i, cell := range record {
			if i < len(header) {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type forecastPayload struct {
	Hourly      map[string]json.RawMessage `json:"hourly"`
	HourlyUnits map[string]string          `json:"hourly_units"`
}

// DecodeForecast reads an hourly forecast payload of parallel arrays,
// {"hourly": {"time": [...], "<measure>": [...]}, "hourly_units": {...}},
// into one raw row per time entry. JSON nulls and short measure arrays leave
// the cell unset. Measures that are not numeric arrays are skipped.
func DecodeForecast(body []byte) ([]RawRow, map[string]string, error) {
	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode forecast: %w", err)
	}
	rawTimes, ok := payload.Hourly[ForecastTimeField]
	if !ok {
		return nil, nil, errors.New("decode forecast: missing hourly.time")
	}
	var times []string
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return nil, nil, fmt.Errorf("decode forecast time: %w", err)
	}

	rows := make([]RawRow, len(times))
	for i, ts := range times {
		rows[i] = RawRow{ForecastTimeField: ts}
	}

	for name, raw := range payload.Hourly {
		if name == ForecastTimeField {
			continue
		}
		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		for i := 0; i < len(rows) && i < len(values); i++ {
			if values[i] != nil {
				rows[i][name] = *values[i]
			}
		}
	}

	units := payload.HourlyUnits
	if units == nil {
		units = map[string]string{}
	}
	return rows, units, nil
}
