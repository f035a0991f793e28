package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attendanceFixture = "../../internal/pipeline/testdata/attendance.csv"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestReport_Attendance(t *testing.T) {
	out, err := runCLI(t, "report",
		"--profile=attendance",
		"--file="+attendanceFixture,
		"--now=2025-07-14T15:20:00+02:00",
	)
	require.NoError(t, err)

	var report domain.HazardReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "attendance", report.Source)
	assert.Equal(t, "2025-07-14", report.Day)
	assert.Len(t, report.Hourly, 4)
	assert.Equal(t, 1, report.Stats.Dropped)
}

func TestReport_HorizonOverride(t *testing.T) {
	out, err := runCLI(t, "report",
		"--profile=attendance",
		"--file="+attendanceFixture,
		"--now=2025-07-14T15:20:00+02:00",
		"--horizon=1",
	)
	require.NoError(t, err)

	var report domain.HazardReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.HorizonDays)
}

func TestReport_UnknownProfile(t *testing.T) {
	_, err := runCLI(t, "report", "--profile=tides", "--file="+attendanceFixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tides")
}

func TestReport_BadNow(t *testing.T) {
	_, err := runCLI(t, "report", "--profile=attendance", "--file="+attendanceFixture, "--now=yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--now")
}

func TestReport_BadTimezone(t *testing.T) {
	_, err := runCLI(t, "--tz=Mars/Olympus", "report", "--profile=attendance", "--file="+attendanceFixture)
	require.Error(t, err)
}

func TestProfiles(t *testing.T) {
	out, err := runCLI(t, "profiles")
	require.NoError(t, err)

	for _, source := range []string{"attendance", "rip_current", "shore_break", "weather", "marine"} {
		assert.Contains(t, out, source)
	}
	assert.Contains(t, out, "start_anchored")
}

func writeFixtures(t *testing.T, attendance string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"attendance.csv":  attendance,
		"rip_current.csv": "Datetime,Velocity,Hazard_Level\n2025-07-14 11:00:00,0.8,2\n2025-07-14 12:15:00,1.1,3\n",
		"shore_break.csv": "Datetime,Index,Hazard_Level\n2025-07-14 11:00:00,2.5,2\n2025-07-14 13:45:00,4.0,3\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestValidate_Passes(t *testing.T) {
	dir := writeFixtures(t, "Datetime,Attendance,Hazard_Level\n2025-07-14 10:00:00,10,1\n2025-07-14 14:30:00,50,3\n")

	out, err := runCLI(t, "validate", "--dir="+dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
}

func TestValidate_ReportsDroppedRows(t *testing.T) {
	dir := writeFixtures(t, "Datetime,Attendance,Hazard_Level\n2025-07-14 10:00:00,10,1\nnot a date,5,1\n")

	out, err := runCLI(t, "validate", "--dir="+dir)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL (1 errors)")
	assert.Contains(t, out, "1 rows dropped")
}

func seedArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	archive, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	_, _, err = archive.Store(context.Background(), "weather", []byte(`{"hourly":{"time":[]}}`))
	require.NoError(t, err)
	_, _, err = archive.Store(context.Background(), "attendance", []byte("Datetime,Attendance\n"))
	require.NoError(t, err)
	require.NoError(t, archive.Close())
	return path
}

func TestArchiveStats(t *testing.T) {
	path := seedArchive(t)

	out, err := runCLI(t, "archive", "--path="+path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 2")
	assert.Contains(t, out, "attendance: 1")
	assert.Contains(t, out, "weather: 1")
}

func TestArchiveShow(t *testing.T) {
	path := seedArchive(t)

	out, err := runCLI(t, "archive", "--path="+path, "show", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hourly":{"time":[]}}`, out)

	_, err = runCLI(t, "archive", "--path="+path, "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload not found")
}

func TestArchivePrune_KeepsRecent(t *testing.T) {
	path := seedArchive(t)

	out, err := runCLI(t, "archive", "--path="+path, "prune", "--older-than=1h")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 0 payloads")
}
