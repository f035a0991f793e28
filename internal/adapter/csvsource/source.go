// Package csvsource extracts hazard datasets published as CSV, either as a
// local file or behind an http(s) URL.
package csvsource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Getter fetches a URL body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Source reads one CSV dataset. It implements pipeline.Extractor.
type Source struct {
	source   string
	location string
	getter   Getter
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

// New creates a Source for location, a file path or an http(s) URL. getter
// may be nil when location is a file.
func New(source, location string, getter Getter, metrics *observability.Metrics) *Source {
	return &Source{
		source:   source,
		location: location,
		getter:   getter,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
	}
}

// SetClock replaces the clock used for FetchedAt and fetch durations.
func (s *Source) SetClock(c clockwork.Clock) { s.clock = c }

// Source returns the source id.
func (s *Source) Source() string { return s.source }

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Extract reads the current CSV document.
func (s *Source) Extract(ctx context.Context) (domain.RawPayload, error) {
	start := s.clock.Now()
	body, err := s.read(ctx)
	s.metrics.SourceFetchDuration.WithLabelValues(s.source).Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(s.source, "error").Inc()
		return domain.RawPayload{}, err
	}
	s.metrics.SourceRequests.WithLabelValues(s.source, "success").Inc()

	return domain.RawPayload{
		Source:    s.source,
		Format:    domain.FormatCSV,
		Body:      body,
		Origin:    s.location,
		FetchedAt: s.clock.Now().UTC().Truncate(time.Second),
	}, nil
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	if IsRemote(s.location) {
		if s.getter == nil {
			return nil, fmt.Errorf("fetch %s csv: no http client configured", s.source)
		}
		body, err := s.getter.Get(ctx, s.location)
		if err != nil {
			return nil, fmt.Errorf("fetch %s csv: %w", s.source, err)
		}
		return body, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.location)
	if err != nil {
		return nil, fmt.Errorf("read %s csv: %w", s.source, err)
	}
	return body, nil
}
