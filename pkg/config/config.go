// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Search, Corpus, Postgres, Kafka, Redis, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Search       SearchConfig       `yaml:"search"`
	Corpus       CorpusConfig       `yaml:"corpus"`
	RequestQueue RequestQueueConfig `yaml:"requestQueue"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Redis        RedisConfig        `yaml:"redis"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// SearchConfig holds the ranking constants and stop words of the index.
type SearchConfig struct {
	MaxResults       int      `yaml:"maxResults"`
	RelevanceEpsilon float64  `yaml:"relevanceEpsilon"`
	Buckets          int      `yaml:"buckets"`
	Workers          int      `yaml:"workers"`
	Mode             string   `yaml:"mode"`
	StopWords        []string `yaml:"stopWords"`
	StopWordsText    string   `yaml:"stopWordsText"`
}

// CorpusConfig selects where documents are loaded from at startup.
type CorpusConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
	Table  string `yaml:"table"`
}

// RequestQueueConfig sizes the sliding window of the request-rate tracker.
type RequestQueueConfig struct {
	Window int `yaml:"window"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngest string `yaml:"documentIngest"`
}

// RedisConfig holds Redis connection and result-caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local use.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxResults:       5,
			RelevanceEpsilon: 1e-6,
			Buckets:          128,
			Workers:          0,
			Mode:             "sequential",
		},
		Corpus: CorpusConfig{
			Source: "file",
			Table:  "documents",
		},
		RequestQueue: RequestQueueConfig{
			Window: 1440,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "searchserver",
			User:            "searchserver",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "searchserver-group",
			Topics: KafkaTopics{
				DocumentIngest: "document-ingest",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects values the index cannot work with.
func (c *Config) Validate() error {
	if c.Search.MaxResults <= 0 {
		return apperrors.Newf("config", apperrors.ErrInvalidConfig, "search.maxResults must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.RelevanceEpsilon <= 0 {
		return apperrors.Newf("config", apperrors.ErrInvalidConfig, "search.relevanceEpsilon must be positive, got %g", c.Search.RelevanceEpsilon)
	}
	if c.Search.Buckets <= 0 {
		return apperrors.Newf("config", apperrors.ErrInvalidConfig, "search.buckets must be positive, got %d", c.Search.Buckets)
	}
	if c.RequestQueue.Window <= 0 {
		return apperrors.Newf("config", apperrors.ErrInvalidConfig, "requestQueue.window must be positive, got %d", c.RequestQueue.Window)
	}
	switch c.Corpus.Source {
	case "", "file", "postgres", "none":
	default:
		return apperrors.Newf("config", apperrors.ErrInvalidConfig, "unknown corpus.source %q", c.Corpus.Source)
	}
	return nil
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SS_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("SS_SEARCH_BUCKETS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Buckets = n
		}
	}
	if v := os.Getenv("SS_SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = n
		}
	}
	if v := os.Getenv("SS_SEARCH_MODE"); v != "" {
		cfg.Search.Mode = v
	}
	if v := os.Getenv("SS_SEARCH_STOP_WORDS"); v != "" {
		cfg.Search.StopWords = strings.Fields(v)
	}
	if v := os.Getenv("SS_CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("SS_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("SS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("SS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("SS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
}
