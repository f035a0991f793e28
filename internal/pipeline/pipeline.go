package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

const defaultInterval = 15 * time.Minute

// Extractor fetches the current raw payload of one source.
type Extractor interface {
	Source() string
	Extract(ctx context.Context) (domain.RawPayload, error)
}

// Transformer converts a raw payload into a hazard report.
type Transformer interface {
	Transform(ctx context.Context, payload domain.RawPayload) (domain.HazardReport, error)
}

// BatchLoader writes the reports of one refresh cycle to a sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.HazardReport) error
}

// Archiver keeps a copy of every fetched payload.
type Archiver interface {
	Store(ctx context.Context, source string, body []byte) (id int64, inserted bool, err error)
}

// Options configures the refresh schedule and the optional stages.
type Options struct {
	Clock    clockwork.Clock // defaults to the real clock
	Interval time.Duration   // defaults to 15m
	Profiles []Profile       // alignment pairings; defaults to BuiltinProfiles
	Loader   BatchLoader     // optional sink
	Archiver Archiver        // optional payload archive
}

// Pipeline orchestrates the extract-transform-load refresh loop.
type Pipeline struct {
	extractors  []Extractor
	transformer Transformer
	store       *ReportStore
	loader      BatchLoader
	archiver    Archiver
	profiles    map[string]Profile
	clock       clockwork.Clock
	interval    time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline refreshing every extractor into store.
func New(extractors []Extractor, t Transformer, store *ReportStore, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Profiles == nil {
		opts.Profiles = BuiltinProfiles()
	}
	profiles := make(map[string]Profile, len(opts.Profiles))
	for _, p := range opts.Profiles {
		profiles[p.Source] = p
	}
	return &Pipeline{
		extractors:  extractors,
		transformer: t,
		store:       store,
		loader:      opts.Loader,
		archiver:    opts.Archiver,
		profiles:    profiles,
		clock:       opts.Clock,
		interval:    opts.Interval,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a refresh cycle has produced a report.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no hazard report has been produced yet")
	}
	return nil
}

// Run refreshes every source immediately, then once per interval, until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "sources", len(p.extractors), "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.RunOnce(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce performs one refresh cycle and returns the number of sources that
// refreshed successfully. A failing source keeps its previous report with
// Error set; the other sources are unaffected.
func (p *Pipeline) RunOnce(ctx context.Context) int {
	start := p.clock.Now()

	var refreshed []string
	for _, e := range p.extractors {
		if ctx.Err() != nil {
			return len(refreshed)
		}
		source := e.Source()
		report, err := p.refresh(ctx, e)
		if err != nil {
			if ctx.Err() != nil {
				return len(refreshed)
			}
			p.logger.Warn("source refresh failed", "source", source, "error", err)
			p.metrics.RefreshErrors.WithLabelValues(source).Inc()
			p.store.Fail(source, err)
			continue
		}
		p.store.Put(report)
		p.metrics.ReportsGenerated.WithLabelValues(source).Inc()
		refreshed = append(refreshed, source)
	}

	// Alignment reads other sources, so it runs after every source refreshed.
	batch := make([]domain.HazardReport, 0, len(refreshed))
	for _, source := range refreshed {
		report, _ := p.store.Get(source)
		if profile, ok := p.profiles[source]; ok && len(profile.AlignWith) > 0 {
			report = Align(report, profile, p.store.Get)
			p.store.Put(report)
		}
		batch = append(batch, report)
	}

	if len(batch) > 0 {
		p.ready.Store(true)
		p.load(ctx, batch)
	}

	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	return len(refreshed)
}

func (p *Pipeline) refresh(ctx context.Context, e Extractor) (domain.HazardReport, error) {
	payload, err := e.Extract(ctx)
	if err != nil {
		return domain.HazardReport{}, domain.Unavailable(e.Source(), err)
	}
	if payload.Source == "" {
		payload.Source = e.Source()
	}
	p.archive(ctx, payload)
	return p.transformer.Transform(ctx, payload)
}

// archive is best-effort: a failing archive never blocks a refresh.
func (p *Pipeline) archive(ctx context.Context, payload domain.RawPayload) {
	if p.archiver == nil {
		return
	}
	id, inserted, err := p.archiver.Store(ctx, payload.Source, payload.Body)
	if err != nil {
		p.logger.Warn("archive payload failed", "source", payload.Source, "error", err)
		return
	}
	result := "duplicate"
	if inserted {
		result = "inserted"
	}
	p.metrics.ArchivedPayloads.WithLabelValues(result).Inc()
	p.logger.Debug("payload archived", "source", payload.Source, "id", id, "result", result)
}

func (p *Pipeline) load(ctx context.Context, batch []domain.HazardReport) {
	if p.loader == nil {
		return
	}
	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.ReportsPublished.Add(float64(len(batch)))
}
