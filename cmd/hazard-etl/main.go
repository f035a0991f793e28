package main

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/csvsource"
	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/beach-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/beach-hazard-etl/internal/adapter/kafka"
	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/beach-hazard-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/beach-hazard-etl/internal/config"
	"github.com/couchcryptid/beach-hazard-etl/internal/domain"
	"github.com/couchcryptid/beach-hazard-etl/internal/observability"
	"github.com/couchcryptid/beach-hazard-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractors := buildExtractors(cfg, logger, metrics)
	if len(extractors) == 0 {
		logger.Error("no sources configured; set OPENMETEO_ENABLED or a *_CSV variable")
		os.Exit(1)
	}

	opts := pipeline.Options{Interval: cfg.RefreshInterval}

	// Kafka sink (feature-flagged via KAFKA_BROKERS).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Loader = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	// Payload archive (feature-flagged via ARCHIVE_PATH).
	var archive *sqlite.Archive
	if cfg.ArchivePath != "" {
		archive, err = sqlite.Open(ctx, cfg.ArchivePath)
		if err != nil {
			logger.Error("failed to open payload archive", "path", cfg.ArchivePath, "error", err)
			os.Exit(1)
		}
		opts.Archiver = archive
		logger.Info("payload archive enabled", "path", cfg.ArchivePath)
	}

	engine := pipeline.EngineOptions{
		Location:     cfg.Location,
		HorizonDays:  cfg.HorizonDays,
		Hours:        domain.HourRange{Start: cfg.ExtremaStartHour, End: cfg.ExtremaEndHour},
		SnapshotHour: cfg.SnapshotHour,
	}
	transformer := pipeline.NewTransformer(pipeline.BuiltinProfiles(), engine, cfg.ReportCacheSize, logger, metrics)
	store := pipeline.NewReportStore()

	p := pipeline.New(extractors, transformer, store, logger, metrics, opts)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("payload archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func buildExtractors(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) []pipeline.Extractor {
	var extractors []pipeline.Extractor

	if cfg.OpenMeteoEnabled {
		loc := openmeteo.Location{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
			Timezone:  cfg.Timezone,
		}
		// The horizon ends at midnight after the last day, so one extra
		// forecast day is requested.
		days := cfg.HorizonDays + 1
		weather := fetch.NewClient(fetch.DefaultConfig(pipeline.SourceWeather, cfg.OpenMeteoTimeout), logger)
		marine := fetch.NewClient(fetch.DefaultConfig(pipeline.SourceMarine, cfg.OpenMeteoTimeout), logger)
		extractors = append(extractors,
			openmeteo.NewWeather(openmeteo.ForecastURL, loc, days, weather, metrics),
			openmeteo.NewMarine(openmeteo.MarineURL, loc, days, marine, metrics),
		)
		logger.Info("open-meteo sources enabled", "latitude", cfg.Latitude, "longitude", cfg.Longitude, "days", days)
	} else {
		logger.Info("open-meteo sources disabled")
	}

	csvSources := cfg.CSVSources()
	for _, source := range slices.Sorted(maps.Keys(csvSources)) {
		location := csvSources[source]
		client := fetch.NewClient(fetch.DefaultConfig(source, cfg.OpenMeteoTimeout), logger)
		extractors = append(extractors, csvsource.New(source, location, client, metrics))
		logger.Info("csv source enabled", "source", source, "location", location, "remote", csvsource.IsRemote(location))
	}

	return extractors
}
