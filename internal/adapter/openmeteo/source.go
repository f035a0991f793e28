// Package openmeteo extracts hourly weather and marine forecasts from the
// Open-Meteo APIs.
package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	ForecastURL = "https://api.open-meteo.com/v1/forecast"
	MarineURL   = "https://marine-api.open-meteo.com/v1/marine"
)

// WeatherVariables are the hourly measures requested for the weather source.
var WeatherVariables = []string{"temperature_2m", "uv_index", "wind_speed_10m", "wind_gusts_10m", "wind_direction_10m"}

// MarineVariables are the hourly measures requested for the marine source.
var MarineVariables = []string{"wave_height", "wave_period", "wave_direction"}

// Getter fetches a URL body. *fetch.Client is the production implementation.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Location is where and in which zone forecasts are requested.
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string // IANA name; hourly times come back as local wall-clock
}

// Source extracts one hourly forecast document from Open-Meteo.
// It implements pipeline.Extractor.
type Source struct {
	source    string
	baseURL   string
	variables []string
	loc       Location
	days      int
	getter    Getter
	clock     clockwork.Clock
	metrics   *observability.Metrics
}

// NewWeather creates the weather forecast source. days is the number of
// forecast days requested, today included.
func NewWeather(baseURL string, loc Location, days int, getter Getter, metrics *observability.Metrics) *Source {
	return newSource("weather", baseURL, WeatherVariables, loc, days, getter, metrics)
}

// NewMarine creates the marine forecast source.
func NewMarine(baseURL string, loc Location, days int, getter Getter, metrics *observability.Metrics) *Source {
	return newSource("marine", baseURL, MarineVariables, loc, days, getter, metrics)
}

func newSource(source, baseURL string, variables []string, loc Location, days int, getter Getter, metrics *observability.Metrics) *Source {
	return &Source{
		source:    source,
		baseURL:   baseURL,
		variables: variables,
		loc:       loc,
		days:      days,
		getter:    getter,
		clock:     clockwork.NewRealClock(),
		metrics:   metrics,
	}
}

// SetClock replaces the clock used for FetchedAt and fetch durations.
func (s *Source) SetClock(c clockwork.Clock) { s.clock = c }

// Source returns the source id.
func (s *Source) Source() string { return s.source }

// URL returns the request URL for the configured location.
func (s *Source) URL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(s.loc.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(s.loc.Longitude, 'f', 4, 64))
	q.Set("hourly", strings.Join(s.variables, ","))
	q.Set("timezone", s.loc.Timezone)
	q.Set("forecast_days", strconv.Itoa(s.days))
	return s.baseURL + "?" + q.Encode()
}

// Extract fetches the current forecast document.
func (s *Source) Extract(ctx context.Context) (domain.RawPayload, error) {
	u := s.URL()
	start := s.clock.Now()
	body, err := s.getter.Get(ctx, u)
	s.metrics.SourceFetchDuration.WithLabelValues(s.source).Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(s.source, "error").Inc()
		return domain.RawPayload{}, fmt.Errorf("fetch %s forecast: %w", s.source, err)
	}
	s.metrics.SourceRequests.WithLabelValues(s.source, "success").Inc()

	return domain.RawPayload{
		Source:    s.source,
		Format:    domain.FormatForecast,
		Body:      body,
		Origin:    u,
		FetchedAt: s.clock.Now().UTC().Truncate(time.Second),
	}, nil
}
