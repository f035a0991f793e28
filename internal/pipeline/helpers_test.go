package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/stretchr/testify/require"
)

// testLoc is a fixed +02:00 zone so tests do not depend on the host tzdata.
var testLoc = time.FixedZone("CEST", 2*60*60)

// testNow is a summer afternoon the fixtures are built around.
var testNow = time.Date(2025, time.July, 14, 15, 20, 0, 0, testLoc)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func payload(t *testing.T, source string, format domain.Format, fixture string) domain.RawPayload {
	t.Helper()
	return domain.RawPayload{
		Source: source,
		Format: format,
		Body:   readFixture(t, fixture),
		Origin: fixture,
	}
}

func stamps(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Instant.Format("01-02T15:04")
	}
	return out
}

func intPtr(v int) *int { return &v }

// --- mocks ---

type mockExtractor struct {
	source  string
	payload domain.RawPayload
	mu      sync.Mutex
	err     error
	calls   atomic.Int64
}

func (m *mockExtractor) Source() string { return m.source }

func (m *mockExtractor) Extract(_ context.Context) (domain.RawPayload, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.RawPayload{}, m.err
	}
	return m.payload, nil
}

func (m *mockExtractor) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// stubTransformer reports one hourly row per payload, valued by body length.
type stubTransformer struct {
	err error
}

func (s *stubTransformer) Transform(_ context.Context, p domain.RawPayload) (domain.HazardReport, error) {
	if s.err != nil {
		return domain.HazardReport{}, s.err
	}
	return domain.HazardReport{
		Source: p.Source,
		Hourly: []domain.Row{{
			Instant: testNow.Truncate(time.Hour),
			Values:  map[string]float64{"len": float64(len(p.Body))},
		}},
	}, nil
}

type mockLoader struct {
	mu      sync.Mutex
	batches [][]domain.HazardReport
	err     error
}

func (m *mockLoader) LoadBatch(_ context.Context, reports []domain.HazardReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, reports)
	return nil
}

type mockArchiver struct {
	mu     sync.Mutex
	stored []string
	seen   map[string]bool
	err    error
}

func (m *mockArchiver) Store(_ context.Context, source string, body []byte) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, false, m.err
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	key := source + string(body)
	if m.seen[key] {
		return 0, false, nil
	}
	m.seen[key] = true
	m.stored = append(m.stored, source)
	return int64(len(m.stored)), true, nil
}
