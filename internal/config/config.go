package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers         []string
	KafkaMetarTopic      string
	KafkaTafTopic        string
	KafkaDeadLetterTopic string // empty disables dead-lettering
	KafkaGroupID         string
	HTTPAddr             string
	LogLevel             string
	LogFormat            string
	ShutdownTimeout      time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// MongoDB report store.
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// Resolution policy.
	MetarMaxAge time.Duration

	// Store circuit breaker.
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration

	// TAF coverage monitor. No airports disables it.
	CoverageAirports []string
	CoverageSchedule string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

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

	mongoTimeout, err := parsePositiveDuration("MONGO_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	metarMaxAge, err := parsePositiveDuration("METAR_MAX_AGE", "2h")
	if err != nil {
		return nil, err
	}

	breakerTimeout, err := parsePositiveDuration("BREAKER_OPEN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	breakerThreshold, err := parsePositiveInt("BREAKER_FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaMetarTopic:      sharedcfg.EnvOrDefault("KAFKA_METAR_TOPIC", "met-metar"),
		KafkaTafTopic:        sharedcfg.EnvOrDefault("KAFKA_TAF_TOPIC", "met-taf"),
		KafkaDeadLetterTopic: os.Getenv("KAFKA_DEAD_LETTER_TOPIC"),
		KafkaGroupID:         sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "met-update-db"),
		HTTPAddr:             sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:             sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:      shutdownTimeout,
		BatchSize:            batchSize,
		BatchFlushInterval:   flushInterval,

		MongoURI:      sharedcfg.EnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: sharedcfg.EnvOrDefault("MONGO_DATABASE", "met_update"),
		MongoTimeout:  mongoTimeout,

		MetarMaxAge: metarMaxAge,

		BreakerFailureThreshold: breakerThreshold,
		BreakerOpenTimeout:      breakerTimeout,

		CoverageAirports: parseAirports(os.Getenv("COVERAGE_AIRPORTS")),
		CoverageSchedule: sharedcfg.EnvOrDefault("COVERAGE_SCHEDULE", "@every 5m"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaMetarTopic == "" {
		return nil, errors.New("KAFKA_METAR_TOPIC is required")
	}
	if cfg.KafkaTafTopic == "" {
		return nil, errors.New("KAFKA_TAF_TOPIC is required")
	}
	if cfg.KafkaMetarTopic == cfg.KafkaTafTopic {
		return nil, errors.New("KAFKA_METAR_TOPIC and KAFKA_TAF_TOPIC must differ")
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.MongoDatabase == "" {
		return nil, errors.New("MONGO_DATABASE is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseAirports splits a comma-separated ICAO list, upper-casing and dropping blanks.
func parseAirports(s string) []string {
	var airports []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			airports = append(airports, code)
		}
	}
	return airports
}
