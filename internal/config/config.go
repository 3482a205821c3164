package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ZipDataPath names the postal code dataset: a CSV file, a dBase (.dbf)
	// attribute table, or a postgres:// DSN for a PostGIS zipcodes table.
	ZipDataPath       string
	DistanceCacheSize int

	// ShipLocation is the zone in which "today" is evaluated for ship dates.
	ShipLocation *time.Location

	// Estimate event publishing.
	EventsEnabled       bool
	KafkaBrokers        []string
	KafkaEstimatesTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("SHIP_TIMEZONE", "UTC")
	shipLocation, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid SHIP_TIMEZONE %q: %w", tzName, err)
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ZipDataPath:       sharedcfg.EnvOrDefault("ZIP_DATA_PATH", "Data/uszips.csv"),
		DistanceCacheSize: parseDistanceCacheSize(),
		ShipLocation:      shipLocation,

		EventsEnabled:       eventsEnabled,
		KafkaBrokers:        brokers,
		KafkaEstimatesTopic: sharedcfg.EnvOrDefault("KAFKA_ESTIMATES_TOPIC", "shipping-estimates"),
	}

	if cfg.ZipDataPath == "" {
		return nil, errors.New("ZIP_DATA_PATH is required")
	}
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.EventsEnabled && cfg.KafkaEstimatesTopic == "" {
		return nil, errors.New("KAFKA_ESTIMATES_TOPIC is required when events are enabled")
	}

	return cfg, nil
}

func parseDistanceCacheSize() int {
	if s := os.Getenv("DISTANCE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
