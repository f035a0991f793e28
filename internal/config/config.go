package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on images without a zoneinfo database

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Engine settings.
	Timezone         string
	Location         *time.Location
	RefreshInterval  time.Duration
	HorizonDays      int
	ExtremaStartHour int
	ExtremaEndHour   int
	SnapshotHour     int
	ReportCacheSize  int

	// Open-Meteo forecast sources.
	Latitude         float64
	Longitude        float64
	OpenMeteoEnabled bool
	OpenMeteoTimeout time.Duration

	// CSV sources: file path or http(s) URL. Empty disables the source.
	AttendanceCSV string
	RipCurrentCSV string
	ShoreBreakCSV string

	// Optional sinks.
	KafkaBrokers []string
	KafkaTopic   string
	ArchivePath  string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:      sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:      sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		Timezone:      sharedcfg.EnvOrDefault("TIMEZONE", "Europe/Paris"),
		AttendanceCSV: os.Getenv("ATTENDANCE_CSV"),
		RipCurrentCSV: os.Getenv("RIP_CURRENT_CSV"),
		ShoreBreakCSV: os.Getenv("SHORE_BREAK_CSV"),
		KafkaBrokers:  sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    sharedcfg.EnvOrDefault("KAFKA_TOPIC", "beach-hazard-reports"),
		ArchivePath:   os.Getenv("ARCHIVE_PATH"),
	}

	var err error
	if cfg.ShutdownTimeout, err = sharedcfg.ParseShutdownTimeout(); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = positiveDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.OpenMeteoTimeout, err = positiveDuration("OPENMETEO_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HorizonDays, err = intInRange("HORIZON_DAYS", 3, 1, 16); err != nil {
		return nil, err
	}
	if cfg.ExtremaStartHour, err = intInRange("EXTREMA_START_HOUR", 11, 0, 23); err != nil {
		return nil, err
	}
	if cfg.ExtremaEndHour, err = intInRange("EXTREMA_END_HOUR", 20, 0, 23); err != nil {
		return nil, err
	}
	if cfg.ExtremaStartHour > cfg.ExtremaEndHour {
		return nil, errors.New("EXTREMA_START_HOUR must not be after EXTREMA_END_HOUR")
	}
	if cfg.SnapshotHour, err = intInRange("SNAPSHOT_HOUR", 11, 0, 23); err != nil {
		return nil, err
	}
	if cfg.ReportCacheSize, err = intInRange("REPORT_CACHE_SIZE", 64, 1, 1<<20); err != nil {
		return nil, err
	}
	if cfg.Latitude, err = floatInRange("LATITUDE", 43.48, -90, 90); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = floatInRange("LONGITUDE", -1.56, -180, 180); err != nil {
		return nil, err
	}
	if cfg.OpenMeteoEnabled, err = boolOrDefault("OPENMETEO_ENABLED", true); err != nil {
		return nil, err
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// CSVSources maps each configured CSV source id to its location.
func (c *Config) CSVSources() map[string]string {
	out := make(map[string]string, 3)
	for source, loc := range map[string]string{
		"attendance":  c.AttendanceCSV,
		"rip_current": c.RipCurrentCSV,
		"shore_break": c.ShoreBreakCSV,
	} {
		if loc != "" {
			out[source] = loc
		}
	}
	return out
}

func positiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func intInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func floatInRange(key string, fallback, lo, hi float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < lo || f > hi {
		return 0, fmt.Errorf("invalid %s: must be a number in [%g, %g]", key, lo, hi)
	}
	return f, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
