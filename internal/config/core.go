// Package config loads the process-wide CoreConfig: Mongo connection,
// fetcher politeness defaults, worker pool size, and log sink, using the
// teacher's fail-open LoadEnvWithFallback/LoadEnvInt/LoadEnvDuration
// convention from internal/pkg/config.
package config

import (
	"fmt"
	"log/slog"
	"time"

	pkgconfig "webcrawler/internal/pkg/config"
)

// CoreConfig is the recognised option set: mongodb_uri, mongodb_db,
// crawler_user_agent, crawler_delay, max_workers, request_timeout,
// max_retries, log_level, log_file, api_host, api_port.
type CoreConfig struct {
	MongoURI     string
	MongoDB      string
	UserAgent    string
	CrawlDelay   time.Duration
	MaxWorkers   int
	RequestTimeout time.Duration
	MaxRetries   int
	LogLevel     string
	LogFile      string
	APIHost      string
	APIPort      int
}

// DefaultCoreConfig mirrors original_source/src/utils/config.py's Settings
// defaults.
func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		MongoURI:       "mongodb://localhost:27017",
		MongoDB:        "webcrawler",
		UserAgent:      "webcrawler/1.0 (+politeness-enabled)",
		CrawlDelay:     1 * time.Second,
		MaxWorkers:     4,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		LogLevel:       "info",
		LogFile:        "",
		APIHost:        "0.0.0.0",
		APIPort:        8000,
	}
}

// LoadCoreConfigFromEnv loads CoreConfig from the environment using the
// fail-open strategy every other config loader in this codebase follows:
// an invalid value logs a warning and falls back to the default rather than
// aborting startup. metrics may be nil in tests.
func LoadCoreConfigFromEnv(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) CoreConfig {
	cfg := DefaultCoreConfig()

	cfg.MongoURI = pkgconfig.LoadEnvString("MONGODB_URI", cfg.MongoURI)
	cfg.MongoDB = pkgconfig.LoadEnvString("MONGODB_DB", cfg.MongoDB)
	cfg.UserAgent = pkgconfig.LoadEnvString("CRAWLER_USER_AGENT", cfg.UserAgent)
	cfg.LogLevel = pkgconfig.LoadEnvString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = pkgconfig.LoadEnvString("LOG_FILE", cfg.LogFile)
	cfg.APIHost = pkgconfig.LoadEnvString("API_HOST", cfg.APIHost)

	cfg.CrawlDelay = loadDuration(logger, metrics, "CRAWLER_DELAY", cfg.CrawlDelay, 0, time.Hour)
	cfg.RequestTimeout = loadDuration(logger, metrics, "REQUEST_TIMEOUT", cfg.RequestTimeout, time.Second, 10*time.Minute)
	cfg.MaxWorkers = loadIntRange(logger, metrics, "MAX_WORKERS", cfg.MaxWorkers, 1, 128)
	cfg.MaxRetries = loadIntRange(logger, metrics, "MAX_RETRIES", cfg.MaxRetries, 0, 20)
	cfg.APIPort = loadIntRange(logger, metrics, "API_PORT", cfg.APIPort, 1, 65535)

	if metrics != nil {
		metrics.RecordLoadTimestamp()
	}
	return cfg
}

func loadDuration(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics, key string, fallback, min, max time.Duration) time.Duration {
	result := pkgconfig.LoadEnvDuration(key, fallback, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, min, max)
	})
	if result.FallbackApplied {
		for _, w := range result.Warnings {
			logger.Warn("configuration fallback applied", slog.String("field", key), slog.String("warning", w))
		}
		if metrics != nil {
			metrics.RecordFallback(key, "invalid_value")
		}
	}
	return result.Value.(time.Duration)
}

func loadIntRange(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics, key string, fallback, min, max int) int {
	result := pkgconfig.LoadEnvInt(key, fallback, func(v int) error {
		return pkgconfig.ValidateIntRange(v, min, max)
	})
	if result.FallbackApplied {
		for _, w := range result.Warnings {
			logger.Warn("configuration fallback applied", slog.String("field", key), slog.String("warning", w))
		}
		if metrics != nil {
			metrics.RecordFallback(key, "invalid_value")
		}
	}
	return result.Value.(int)
}

// Validate reports a non-nil error if CoreConfig carries values the rest
// of the system would refuse outright.
func (c CoreConfig) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("config: mongodb_uri is required")
	}
	if c.MongoDB == "" {
		return fmt.Errorf("config: mongodb_db is required")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("config: crawler_user_agent is required")
	}
	return nil
}
