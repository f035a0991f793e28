package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	body := []byte("\ufeffDatetime, Attendance ,Hazard_Level\n" +
		"2025-05-01 10:00:00,12.5,2\n" +
		"2025-05-01 10:15:00,13\n")

	rows, err := DecodeCSV(body)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RawRow{"Datetime": "2025-05-01 10:00:00", "Attendance": "12.5", "Hazard_Level": "2"}, rows[0])
	assert.NotContains(t, rows[1], "Hazard_Level")
}

func TestDecodeCSV_Empty(t *testing.T) {
	rows, err := DecodeCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = DecodeCSV([]byte("Datetime,Velocity\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeCSV_Malformed(t *testing.T) {
	_, err := DecodeCSV([]byte("a,b\n\"unterminated,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv row")
}

func TestDecodeForecast(t *testing.T) {
	body := []byte(`{
		"latitude": 43.48,
		"hourly_units": {"time": "iso8601", "wave_height": "m"},
		"hourly": {
			"time": ["2025-05-01T00:00", "2025-05-01T01:00", "2025-05-01T02:00"],
			"wave_height": [0.8, null, 1.1],
			"wave_period": [7.5],
			"note": "not an array"
		}
	}`)

	rows, units, err := DecodeForecast(body)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RawRow{"time": "2025-05-01T00:00", "wave_height": 0.8, "wave_period": 7.5}, rows[0])
	assert.Equal(t, RawRow{"time": "2025-05-01T01:00"}, rows[1])
	assert.Equal(t, RawRow{"time": "2025-05-01T02:00", "wave_height": 1.1}, rows[2])
	assert.Equal(t, "m", units["wave_height"])
}

func TestDecodeForecast_NullBecomesZeroAfterParse(t *testing.T) {
	body := []byte(`{"hourly": {"time": ["2025-05-01T10:00"], "uv_index": [null]}}`)

	raw, units, err := DecodeForecast(body)
	require.NoError(t, err)
	assert.NotNil(t, units)

	rows := ParseRows(raw, ForecastTimeField, []string{"uv_index"}, testLoc)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Values["uv_index"])
}

func TestDecodeForecast_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"not json", `<html>`, "decode forecast"},
		{"no time", `{"hourly": {"uv_index": [1]}}`, "missing hourly.time"},
		{"bad time", `{"hourly": {"time": 12}}`, "decode forecast time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeForecast([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
