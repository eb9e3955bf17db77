package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Cache    CacheConfig
	Topics   TopicsConfig
	Cluster  ClusterConfig
	Twitter  TwitterConfig
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL                string        `envconfig:"DATABASE_URL"`
	MaxConnections     int           `envconfig:"DATABASE_MAX_CONNECTIONS" default:"25"`
	MaxIdleConnections int           `envconfig:"DATABASE_MAX_IDLE_CONNECTIONS" default:"5"`
	ConnMaxLifetime    time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"5m"`
	ConnectTimeout     time.Duration `envconfig:"DATABASE_CONNECT_TIMEOUT" default:"10s"`
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// CacheConfig controls when previously stored query results are reused
// instead of re-fetching from the network.
type CacheConfig struct {
	// FreshnessDays is the maximum whole-day age of a query record
	// eligible for reuse.
	FreshnessDays int `envconfig:"CACHE_FRESHNESS_DAYS" default:"7"`
	// MinResults is the result count a query record must exceed to be
	// reused.
	MinResults int `envconfig:"CACHE_MIN_RESULTS" default:"10"`
}

// TopicsConfig holds topic extraction parameters.
type TopicsConfig struct {
	TopicCount     int     `envconfig:"TOPICS_COUNT" default:"10"`
	Passes         int     `envconfig:"TOPICS_PASSES" default:"4"`
	MinWordLength  int     `envconfig:"TOPICS_MIN_WORD_LENGTH" default:"4"`
	TopicWords     int     `envconfig:"TOPICS_WORDS_PER_TOPIC" default:"10"`
	MinProbability float64 `envconfig:"TOPICS_MIN_PROBABILITY" default:"0.9"`
	Seed           int64   `envconfig:"TOPICS_SEED" default:"1"`
}

// ClusterConfig holds temporal clustering parameters.
type ClusterConfig struct {
	MinClusterSize int `envconfig:"CLUSTER_MIN_SIZE" default:"10"`
	// Radius is the neighborhood distance on the timeline within which
	// two activities count as near neighbors.
	Radius time.Duration `envconfig:"CLUSTER_RADIUS" default:"24h"`
}

// TwitterConfig holds fetch collaborator credentials.
type TwitterConfig struct {
	BearerToken string        `envconfig:"TWITTER_BEARER_TOKEN"`
	Timeout     time.Duration `envconfig:"TWITTER_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables, applying
// defaults when values are not provided.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks constraints not expressible as struct tags.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: must be one of debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
	}

	if c.Cache.FreshnessDays < 0 {
		return fmt.Errorf("invalid CACHE_FRESHNESS_DAYS: must be non-negative")
	}
	if c.Cache.MinResults < 0 {
		return fmt.Errorf("invalid CACHE_MIN_RESULTS: must be non-negative")
	}
	if c.Topics.TopicCount < 1 {
		return fmt.Errorf("invalid TOPICS_COUNT: must be at least 1")
	}
	if c.Topics.Passes < 1 {
		return fmt.Errorf("invalid TOPICS_PASSES: must be at least 1")
	}
	if c.Cluster.MinClusterSize < 1 {
		return fmt.Errorf("invalid CLUSTER_MIN_SIZE: must be at least 1")
	}
	if c.Cluster.Radius <= 0 {
		return fmt.Errorf("invalid CLUSTER_RADIUS: must be positive")
	}

	return nil
}
