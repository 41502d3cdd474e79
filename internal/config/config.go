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

	// RecordsDBPath is the SQLite file backing the record store.
	// Empty keeps records in memory for the life of the process.
	RecordsDBPath string

	EstimateLatency time.Duration
	DefaultRiskCrop string

	// RandomSeed makes estimates and forecasts reproducible when set.
	RandomSeed    uint64
	RandomSeedSet bool

	// Kafka event publishing configuration.
	KafkaEnabled          bool
	KafkaBrokers          []string
	KafkaPredictionsTopic string
	KafkaAlertsTopic      string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	latency, err := time.ParseDuration(sharedcfg.EnvOrDefault("ESTIMATE_LATENCY", "0s"))
	if err != nil || latency < 0 {
		return nil, errors.New("invalid ESTIMATE_LATENCY")
	}

	seed, seedSet, err := parseRandomSeed()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RecordsDBPath: envOrDefaultAllowEmpty("RECORDS_DB_PATH", "farm_records.db"),

		EstimateLatency: latency,
		DefaultRiskCrop: sharedcfg.EnvOrDefault("DEFAULT_RISK_CROP", "Rice"),

		RandomSeed:    seed,
		RandomSeedSet: seedSet,

		KafkaEnabled:          kafkaEnabled,
		KafkaBrokers:          brokers,
		KafkaPredictionsTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTIONS_TOPIC", "yield-predictions"),
		KafkaAlertsTopic:      sharedcfg.EnvOrDefault("KAFKA_ALERTS_TOPIC", "risk-alerts"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parseRandomSeed() (uint64, bool, error) {
	s := os.Getenv("RANDOM_SEED")
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}
	return n, true, nil
}

// envOrDefaultAllowEmpty distinguishes an unset variable from one explicitly set to "".
func envOrDefaultAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
