package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/avi-report-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// AllowPartialReports publishes reports whose times only partly resolved.
	// When false they are logged and skipped.
	AllowPartialReports bool

	// ValidityBounds caps validity and trend periods per report type.
	ValidityBounds domain.ValidityBounds
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
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

	allowPartial, err := strconv.ParseBool(sharedcfg.EnvOrDefault("ALLOW_PARTIAL_REPORTS", "false"))
	if err != nil {
		return nil, errors.New("invalid ALLOW_PARTIAL_REPORTS")
	}

	bounds, err := parseValidityBounds()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:    sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-aviation-reports"),
		KafkaSinkTopic:      sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "completed-aviation-reports"),
		KafkaGroupID:        sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "avi-report-etl"),
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		BatchSize:           batchSize,
		BatchFlushInterval:  flushInterval,
		AllowPartialReports: allowPartial,
		ValidityBounds:      bounds,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parseValidityBounds() (domain.ValidityBounds, error) {
	def := domain.DefaultValidityBounds()
	bounds := def
	for _, b := range []struct {
		env string
		def time.Duration
		dst *time.Duration
	}{
		{"MAX_VALIDITY_TAF", def.TAF, &bounds.TAF},
		{"MAX_VALIDITY_SIGMET", def.SIGMET, &bounds.SIGMET},
		{"MAX_VALIDITY_AIRMET", def.AIRMET, &bounds.AIRMET},
		{"MAX_TREND_PERIOD", def.Trend, &bounds.Trend},
		{"MAX_VALIDITY_GENERIC", def.Generic, &bounds.Generic},
	} {
		d, err := time.ParseDuration(sharedcfg.EnvOrDefault(b.env, b.def.String()))
		if err != nil || d < 0 {
			return domain.ValidityBounds{}, fmt.Errorf("invalid %s", b.env)
		}
		*b.dst = d
	}
	return bounds, nil
}
