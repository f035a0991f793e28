package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may1 = CalendarDay{Year: 2025, Month: time.May, Day: 1}

func hourly(d int, from int, vals ...float64) Series {
	s := make(Series, len(vals))
	for i, v := range vals {
		s[i] = sample(at(time.May, d, from+i, 0), v)
	}
	return s
}

func TestFindExtrema_CompanionAtPrimaryIndex(t *testing.T) {
	speed := hourly(1, 11, 3, 5, 5, 2)
	dir := hourly(1, 11, 10, 20, 30, 40)

	res := FindExtrema(speed, map[string]Series{"dir": dir}, HourRange{Start: 11, End: 14}, may1)

	require.NotNil(t, res.MaxValue)
	assert.Equal(t, 5.0, *res.MaxValue)
	assert.Equal(t, 12, *res.MaxHour, "ties resolve to the earliest hour")
	assert.Equal(t, 20.0, *res.AuxiliaryAtMax["dir"])

	assert.Equal(t, 2.0, *res.MinValue)
	assert.Equal(t, 14, *res.MinHour)
	assert.Equal(t, 40.0, *res.AuxiliaryAtMin["dir"])
}

func TestFindExtrema_HourRangeInclusive(t *testing.T) {
	s := hourly(1, 9, 100, 1, 2, 3, 4, 200)

	res := FindExtrema(s, nil, HourRange{Start: 10, End: 13}, may1)

	assert.Equal(t, 4.0, *res.MaxValue)
	assert.Equal(t, 13, *res.MaxHour)
	assert.Equal(t, 1.0, *res.MinValue)
	assert.Equal(t, 10, *res.MinHour)
}

func TestFindExtrema_OtherDaysIgnored(t *testing.T) {
	s := append(hourly(1, 12, 4, 6), hourly(2, 12, 50, -3)...)

	res := FindExtrema(s, nil, DefaultHourRange, may1)

	assert.Equal(t, 6.0, *res.MaxValue)
	assert.Equal(t, 4.0, *res.MinValue)
}

func TestFindExtrema_NoValuesInRange(t *testing.T) {
	s := series(
		sample(at(time.May, 1, 8, 0), 3),
		nullSample(at(time.May, 1, 12, 0)),
	)

	res := FindExtrema(s, map[string]Series{"dir": hourly(1, 8, 1, 2)}, DefaultHourRange, may1)

	assert.Nil(t, res.MaxValue)
	assert.Nil(t, res.MinValue)
	assert.Nil(t, res.MaxHour)
	assert.Nil(t, res.MinHour)
	require.Contains(t, res.AuxiliaryAtMax, "dir")
	assert.Nil(t, res.AuxiliaryAtMax["dir"])
	assert.Nil(t, res.AuxiliaryAtMin["dir"])
}

func TestFindExtrema_NilSamplesSkipped(t *testing.T) {
	s := series(
		sample(at(time.May, 1, 11, 0), 2),
		nullSample(at(time.May, 1, 12, 0)),
		sample(at(time.May, 1, 13, 0), 9),
	)
	dir := series(
		sample(at(time.May, 1, 11, 0), 90),
		sample(at(time.May, 1, 12, 0), 180),
		sample(at(time.May, 1, 13, 0), 270),
	)

	res := FindExtrema(s, map[string]Series{"dir": dir}, DefaultHourRange, may1)

	assert.Equal(t, 13, *res.MaxHour)
	assert.Equal(t, 270.0, *res.AuxiliaryAtMax["dir"])
	assert.Equal(t, 90.0, *res.AuxiliaryAtMin["dir"])
}

func TestFindExtrema_ShortCompanionIsNil(t *testing.T) {
	s := hourly(1, 11, 1, 8)
	gusts := hourly(1, 11, 3)

	res := FindExtrema(s, map[string]Series{"gusts": gusts}, DefaultHourRange, may1)

	assert.Nil(t, res.AuxiliaryAtMax["gusts"])
	assert.Equal(t, 3.0, *res.AuxiliaryAtMin["gusts"])
}

func TestFindAllExtrema(t *testing.T) {
	reqs := []ExtremaRequest{
		{Name: "temperature", Series: hourly(1, 11, 20, 24, 22)},
		{Name: "uv", Series: hourly(1, 11, 5, 7, 6)},
	}

	out := FindAllExtrema(reqs, DefaultHourRange, may1)

	require.Len(t, out, 2)
	assert.Equal(t, 24.0, *out["temperature"].MaxValue)
	assert.Equal(t, 12, *out["uv"].MaxHour)
}

func TestHourRange_Validate(t *testing.T) {
	require.NoError(t, DefaultHourRange.Validate())
	require.NoError(t, HourRange{Start: 0, End: 0}.Validate())
	require.Error(t, HourRange{Start: 20, End: 11}.Validate())
	require.Error(t, HourRange{Start: -1, End: 3}.Validate())
	require.Error(t, HourRange{Start: 3, End: 24}.Validate())
}

func TestSnapshotAt(t *testing.T) {
	rows := []Row{
		row(at(time.May, 1, 10, 0), "wave_height", 1.1, "wave_period", 8),
		row(at(time.May, 1, 11, 0), "wave_height", 1.4, "wave_period", 9),
		row(at(time.May, 2, 11, 0), "wave_height", 2.0, "wave_period", 10),
	}

	snap := SnapshotAt(rows, []string{"wave_height", "wave_period", "wave_direction"}, DefaultSnapshotHour)

	assert.Equal(t, 1.4, *snap["wave_height"])
	assert.Equal(t, 9.0, *snap["wave_period"])
	require.Contains(t, snap, "wave_direction")
	assert.Nil(t, snap["wave_direction"])
}

func TestSnapshotAt_NoMatchingHour(t *testing.T) {
	rows := []Row{row(at(time.May, 1, 10, 0), "v", 1)}

	snap := SnapshotAt(rows, []string{"v"}, 11)

	require.Contains(t, snap, "v")
	assert.Nil(t, snap["v"])
}
