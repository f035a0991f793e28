package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeReport(t *testing.T) {
	r := HazardReport{
		Source:      "marine",
		GeneratedAt: at(time.May, 1, 10, 0),
		Timezone:    "Europe/Paris",
		HorizonDays: 3,
		Window:      WindowPrefixMidnight,
		Hourly:      []Row{row(at(time.May, 1, 10, 0), "wave_height", 1.2)},
		Snapshot:    map[string]*float64{"wave_height": nil},
	}

	evt, err := SerializeReport(r)

	require.NoError(t, err)
	assert.Equal(t, []byte("marine"), evt.Key)
	assert.Equal(t, "marine", evt.Headers["source"])
	assert.Equal(t, "2025-05-01T10:00:00+02:00", evt.Headers["generated_at"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(evt.Value, &decoded))
	assert.Equal(t, "marine", decoded["source"])
	assert.Equal(t, "prefix_midnight", decoded["window_policy"])
	assert.Contains(t, decoded["snapshot"], "wave_height")
	assert.NotContains(t, decoded, "error")
}

func TestSourceError(t *testing.T) {
	cause := errors.New("connection refused")

	err := Unavailable("weather", cause)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "weather: source unavailable: connection refused", err.Error())

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "weather", se.Source)
}

func TestUnavailable_NoDoubleWrap(t *testing.T) {
	inner := Unavailable("marine", errors.New("timeout"))
	wrapped := fmt.Errorf("refresh: %w", inner)

	assert.Same(t, wrapped, Unavailable("other", wrapped))
	assert.NoError(t, Unavailable("marine", nil))
}
