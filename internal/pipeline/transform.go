package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/observability"
)

const defaultHorizonDays = 3

// EngineOptions are the engine settings shared by every source.
type EngineOptions struct {
	Location     *time.Location
	HorizonDays  int // used when a profile does not set its own
	Hours        domain.HourRange
	SnapshotHour int
}

// DefaultOptions returns the engine defaults for loc.
func DefaultOptions(loc *time.Location) EngineOptions {
	return EngineOptions{
		Location:     loc,
		HorizonDays:  defaultHorizonDays,
		Hours:        domain.DefaultHourRange,
		SnapshotHour: domain.DefaultSnapshotHour,
	}
}

func (o EngineOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// HazardTransformer turns raw payloads into HazardReports. Results are
// memoized per payload body, source, and hour of "now".
type HazardTransformer struct {
	profiles map[string]Profile
	opts     EngineOptions
	cache    *lruCache[domain.HazardReport]
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a HazardTransformer over profiles.
func NewTransformer(profiles []Profile, opts EngineOptions, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *HazardTransformer {
	byName := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byName[p.Source] = p
	}
	return &HazardTransformer{
		profiles: byName,
		opts:     opts,
		cache:    newLRUCache[domain.HazardReport](cacheSize),
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform builds the report for payload as of the current time.
func (t *HazardTransformer) Transform(ctx context.Context, payload domain.RawPayload) (domain.HazardReport, error) {
	return t.TransformAt(ctx, payload, domain.Now(t.opts.location()))
}

// TransformAt builds the report for payload as of now.
func (t *HazardTransformer) TransformAt(ctx context.Context, payload domain.RawPayload, now time.Time) (domain.HazardReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.HazardReport{}, err
	}
	profile, ok := t.profiles[payload.Source]
	if !ok {
		return domain.HazardReport{}, fmt.Errorf("no profile for source %q", payload.Source)
	}

	now = now.In(t.opts.location())
	key := cacheKey(payload, profile.Window, now)
	if r, ok := t.cache.get(key); ok {
		t.metrics.TransformCache.WithLabelValues("hit").Inc()
		// The engine output is reused; the stamp reflects this refresh.
		r.GeneratedAt = now
		return r, nil
	}
	t.metrics.TransformCache.WithLabelValues("miss").Inc()

	report, err := BuildReport(profile, payload.Body, now, t.opts)
	if err != nil {
		return domain.HazardReport{}, err
	}
	t.cache.put(key, report)

	t.metrics.RowsDropped.WithLabelValues(payload.Source).Add(float64(report.Stats.Dropped))
	t.logger.Debug("payload transformed",
		"source", payload.Source,
		"rows", report.Stats.ParsedRows,
		"dropped", report.Stats.Dropped,
		"buckets", report.Stats.Buckets,
		"windowed", len(report.Hourly),
	)
	return report, nil
}

// cacheKey identifies a transform result. Buckets are whole hours, so every
// "now" inside the same hour yields the same window, day and snapshot. A
// window anchored at now itself is the exception and keys on the exact time.
func cacheKey(payload domain.RawPayload, policy domain.WindowPolicy, now time.Time) string {
	sum := sha256.Sum256(payload.Body)
	at := domain.KeyOf(now).String()
	if policy == domain.WindowPrefixNow {
		at = now.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%s|%s|%s", hex.EncodeToString(sum[:]), payload.Source, at)
}

// BuildReport runs a payload body through the engine for profile p:
// decode, parse, sort, aggregate by hour, window, then derive periods,
// extrema over today and the snapshot. A body that cannot be decoded is
// reported as a SourceError; bad rows are only counted.
func BuildReport(p Profile, body []byte, now time.Time, opts EngineOptions) (domain.HazardReport, error) {
	loc := opts.location()
	now = now.In(loc)

	raw, units, err := decode(p.Format, body)
	if err != nil {
		return domain.HazardReport{}, domain.Unavailable(p.Source, err)
	}

	rows := domain.ParseRows(raw, p.TimestampField, p.FieldNames(), loc)
	domain.SortByInstant(rows)
	hourly := domain.AggregateByHour(rows, p.Rounding())

	horizon := p.HorizonDays
	if horizon <= 0 {
		horizon = opts.HorizonDays
	}
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}
	policy := p.Window
	if policy == "" {
		policy = domain.WindowPrefixMidnight
	}
	windowed := domain.ApplyWindow(hourly, now, horizon, policy)
	today := domain.DayOf(now)

	report := domain.HazardReport{
		Source:      p.Source,
		GeneratedAt: now,
		Timezone:    loc.String(),
		HorizonDays: horizon,
		Window:      policy,
		Day:         today.String(),
		HourRange:   opts.Hours,
		Units:       units,
		Hourly:      windowed,
		Stats: domain.ParseStats{
			RawRows:    len(raw),
			ParsedRows: len(rows),
			Dropped:    len(raw) - len(rows),
			Buckets:    len(hourly),
		},
	}

	if p.PeriodField != "" {
		report.Periods = map[string]domain.DailyPeriods{
			p.PeriodField: domain.SplitMorningAfternoon(domain.Column(windowed, p.PeriodField)),
		}
	}

	if len(p.Extrema) > 0 {
		reqs := make([]domain.ExtremaRequest, 0, len(p.Extrema))
		for _, m := range p.Extrema {
			req := domain.ExtremaRequest{Name: m.Field, Series: domain.Column(windowed, m.Field)}
			if len(m.Companions) > 0 {
				req.Companions = make(map[string]domain.Series, len(m.Companions))
				for _, c := range m.Companions {
					req.Companions[c] = domain.Column(windowed, c)
				}
			}
			reqs = append(reqs, req)
		}
		report.Extrema = domain.FindAllExtrema(reqs, opts.Hours, today)
	}

	if len(p.Snapshot) > 0 {
		report.Snapshot = domain.SnapshotAt(domain.OnDay(windowed, today), p.Snapshot, opts.SnapshotHour)
	}

	return report, nil
}

func decode(format domain.Format, body []byte) ([]domain.RawRow, map[string]string, error) {
	switch format {
	case domain.FormatCSV:
		rows, err := domain.DecodeCSV(body)
		return rows, nil, err
	case domain.FormatForecast:
		return domain.DecodeForecast(body)
	default:
		return nil, nil, fmt.Errorf("unsupported payload format %q", format)
	}
}

// Align fills target.Aligned with each AlignWith series of p re-sampled onto
// target's hourly timeline. lookup returns the latest report of a source; a
// missing reference yields an all-nil series.
func Align(target domain.HazardReport, p Profile, lookup func(source string) (domain.HazardReport, bool)) domain.HazardReport {
	if len(p.AlignWith) == 0 {
		return target
	}
	timeline := domain.Instants(target.Hourly)
	aligned := make(map[string]domain.Series, len(p.AlignWith))
	for _, spec := range p.AlignWith {
		var source domain.Series
		if ref, ok := lookup(spec.Source); ok {
			source = domain.Column(ref.Hourly, spec.Field)
		}
		aligned[spec.Key()] = domain.AlignSeries(timeline, source)
	}
	target.Aligned = aligned
	return target
}
