package pipeline

import (
	"slices"
	"strings"
	"sync"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
)

// ReportStore keeps the latest HazardReport per source. A failed refresh
// keeps the previous data and only sets the report's Error.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.HazardReport
}

// NewReportStore creates an empty store.
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]domain.HazardReport)}
}

// Put replaces the report for r.Source and clears any previous error.
func (s *ReportStore) Put(r domain.HazardReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Error = ""
	s.reports[r.Source] = r
}

// Fail records err against source, keeping the last good data if any.
func (s *ReportStore) Fail(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[source]
	if !ok {
		r = domain.HazardReport{Source: source}
	}
	r.Error = err.Error()
	s.reports[source] = r
}

// Get returns the latest report for source.
func (s *ReportStore) Get(source string) (domain.HazardReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[source]
	return r, ok
}

// List returns every report sorted by source.
func (s *ReportStore) List() []domain.HazardReport {
	s.mu.RLock()
	out := make([]domain.HazardReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.HazardReport) int {
		return strings.Compare(a.Source, b.Source)
	})
	return out
}

// Len returns the number of sources with a report, failed ones included.
func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
