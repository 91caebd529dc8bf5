package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all job settings, populated once from environment variables.
type Config struct {
	SourceURL   string
	MailFrom    string
	MailTo      []string
	DispatchURL string

	HTTPTimeout time.Duration
	LogLevel    string
	LogFormat   string

	// Metrics are pushed only when PushgatewayURL is set.
	PushgatewayURL string
	MetricsJob     string

	// Report archiving is enabled by KAFKA_BROKERS.
	KafkaBrokers      []string
	KafkaArchiveTopic string
}

// ArchiveEnabled reports whether rendered reports should be published to Kafka.
func (c *Config) ArchiveEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from the environment (and a .env file when one
// exists), applying defaults where unset. A missing required value returns an
// error wrapping domain.ErrConfigMissing.
func Load() (*Config, error) {
	// Absent .env is fine; real environment variables always win.
	_ = godotenv.Load()

	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "30s"))
	if err != nil || httpTimeout <= 0 {
		return nil, fmt.Errorf("%w: invalid HTTP_TIMEOUT", domain.ErrConfigInvalid)
	}

	cfg := &Config{
		SourceURL:   strings.TrimSpace(os.Getenv("AEMET_LOCATION")),
		MailFrom:    strings.TrimSpace(os.Getenv("MAIL_FROM")),
		MailTo:      domain.ParseRecipients(os.Getenv("MAIL_TO")),
		DispatchURL: strings.TrimSpace(os.Getenv("RUSTMAIL_URL")),

		HTTPTimeout: httpTimeout,
		LogLevel:    sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		PushgatewayURL: strings.TrimSpace(os.Getenv("PUSHGATEWAY_URL")),
		MetricsJob:     sharedcfg.EnvOrDefault("METRICS_JOB", "meteo-forecast"),

		KafkaBrokers:      parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaArchiveTopic: sharedcfg.EnvOrDefault("KAFKA_ARCHIVE_TOPIC", "meteo-forecast-reports"),
	}

	if cfg.SourceURL == "" {
		return nil, fmt.Errorf("%w: AEMET_LOCATION is required", domain.ErrConfigMissing)
	}
	if cfg.MailFrom == "" {
		return nil, fmt.Errorf("%w: MAIL_FROM is required", domain.ErrConfigMissing)
	}
	if len(cfg.MailTo) == 0 {
		return nil, fmt.Errorf("%w: MAIL_TO is required", domain.ErrConfigMissing)
	}
	if cfg.DispatchURL == "" {
		return nil, fmt.Errorf("%w: RUSTMAIL_URL is required", domain.ErrConfigMissing)
	}
	if cfg.ArchiveEnabled() && cfg.KafkaArchiveTopic == "" {
		return nil, fmt.Errorf("%w: KAFKA_ARCHIVE_TOPIC is required when KAFKA_BROKERS is set", domain.ErrConfigMissing)
	}

	return cfg, nil
}

// parseBrokers returns nil for an unset list so the archive stays disabled.
func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}
