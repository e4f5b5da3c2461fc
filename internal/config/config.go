package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Report sources.
const (
	ReportSourceMemory   = "memory"
	ReportSourcePostgres = "postgres"
)

// Weather sources.
const (
	WeatherSourceSynthetic = "synthetic"
	WeatherSourceNone      = "none"
)

// Place cache backends.
const (
	PlaceCacheMemory    = "memory"
	PlaceCacheMemcached = "memcached"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Report ingestion from Kafka.
	KafkaEnabled          bool
	KafkaBrokers          []string
	KafkaReportsTopic     string
	KafkaPredictionsTopic string // empty disables publishing
	KafkaGroupID          string
	BatchSize             int
	BatchFlushInterval    time.Duration

	// Report storage and lookup.
	ReportSource         string
	DatabaseURL          string
	ReportLookupRadiusKm float64
	ReportRetention      time.Duration
	ReportRetentionSweep time.Duration
	SeedSyntheticReports int

	WeatherSource string
	RegionsFile   string

	// Reverse geocoding.
	GeocoderEnabled      bool
	NominatimURL         string
	GeocoderUserAgent    string
	GeocoderTimeout      time.Duration
	GeocoderMinInterval  time.Duration
	GeocoderZoom         int
	PlaceCacheBackend    string
	PlaceCacheMaxEntries int
	MemcachedAddrs       string
}

// Load reads configuration from a .env file, when present, and the
// environment, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic:     sharedcfg.EnvOrDefault("KAFKA_REPORTS_TOPIC", "water-reports"),
		KafkaPredictionsTopic: os.Getenv("KAFKA_PREDICTIONS_TOPIC"),
		KafkaGroupID:          sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "water-risk"),
		BatchSize:             batchSize,
		BatchFlushInterval:    flushInterval,

		ReportSource:  strings.ToLower(sharedcfg.EnvOrDefault("REPORT_SOURCE", ReportSourceMemory)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		WeatherSource: strings.ToLower(sharedcfg.EnvOrDefault("WEATHER_SOURCE", WeatherSourceSynthetic)),
		RegionsFile:   os.Getenv("REGIONS_FILE"),

		NominatimURL:      sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "water-risk-service/1.0"),
		PlaceCacheBackend: strings.ToLower(sharedcfg.EnvOrDefault("PLACE_CACHE_BACKEND", PlaceCacheMemory)),
		MemcachedAddrs:    sharedcfg.EnvOrDefault("MEMCACHED_ADDRS", "localhost:11211"),
	}

	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.GeocoderEnabled, err = parseBool("GEOCODER_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.ReportLookupRadiusKm, err = parsePositiveFloat("REPORT_LOOKUP_RADIUS_KM", 10); err != nil {
		return nil, err
	}
	if cfg.ReportRetention, err = parseDuration("REPORT_RETENTION", "4320h", true); err != nil {
		return nil, err
	}
	if cfg.ReportRetentionSweep, err = parseDuration("REPORT_RETENTION_SWEEP", "1h", false); err != nil {
		return nil, err
	}
	if cfg.SeedSyntheticReports, err = parseNonNegativeInt("SEED_SYNTHETIC_REPORTS", 0); err != nil {
		return nil, err
	}
	if cfg.GeocoderTimeout, err = parseDuration("GEOCODER_TIMEOUT", "10s", false); err != nil {
		return nil, err
	}
	if cfg.GeocoderMinInterval, err = parseDuration("GEOCODER_MIN_INTERVAL", "1s", false); err != nil {
		return nil, err
	}
	if cfg.GeocoderZoom, err = parseNonNegativeInt("GEOCODER_ZOOM", 14); err != nil {
		return nil, err
	}
	if cfg.PlaceCacheMaxEntries, err = parseNonNegativeInt("PLACE_CACHE_MAX_ENTRIES", 0); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaReportsTopic == "" {
			return errors.New("KAFKA_REPORTS_TOPIC is required")
		}
	}
	switch c.ReportSource {
	case ReportSourceMemory:
	case ReportSourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("REPORT_SOURCE is postgres but DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("invalid REPORT_SOURCE %q: must be memory or postgres", c.ReportSource)
	}
	switch c.WeatherSource {
	case WeatherSourceSynthetic, WeatherSourceNone:
	default:
		return fmt.Errorf("invalid WEATHER_SOURCE %q: must be synthetic or none", c.WeatherSource)
	}
	switch c.PlaceCacheBackend {
	case PlaceCacheMemory, PlaceCacheMemcached:
	default:
		return fmt.Errorf("invalid PLACE_CACHE_BACKEND %q: must be memory or memcached", c.PlaceCacheBackend)
	}
	if c.GeocoderZoom > 18 {
		return fmt.Errorf("invalid GEOCODER_ZOOM %d: must be between 0 and 18", c.GeocoderZoom)
	}
	if c.GeocoderEnabled && c.GeocoderUserAgent == "" {
		return errors.New("GEOCODER_USER_AGENT is required when geocoding is enabled")
	}
	return nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseDuration parses key as a duration. Zero is accepted only when allowZero
// is set; negative values are always rejected.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", key, s)
	}
	return v, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, s)
	}
	return v, nil
}
