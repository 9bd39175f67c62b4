package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Catalog    CatalogConfig
	Classifier ClassifierConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Finder     FinderConfig
	Log        LogConfig
	Tracing    TracingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LLMConfig holds the specification extractor settings
type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	StructuredOutput  bool          `mapstructure:"structured_output"`
}

// CatalogConfig selects the catalog store
type CatalogConfig struct {
	Driver string `mapstructure:"driver"` // "memory", "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
	Source string `mapstructure:"source"` // CSV or parquet file loaded at startup
}

// ClassifierConfig holds the query classifier model location
type ClassifierConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// FinderConfig tunes result sizes and the ranking engine
type FinderConfig struct {
	ResultLimit       int  `mapstructure:"result_limit"`
	TopN              int  `mapstructure:"top_n"`
	FuzzyMatching     bool `mapstructure:"fuzzy_matching"`
	FuzzyEditDistance int  `mapstructure:"fuzzy_edit_distance"`
}

// LogConfig selects the log format
type LogConfig struct {
	Mode string `mapstructure:"mode"` // "development" or "production"
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"` // "stdout" or "otlp"
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

const envPrefix = "LAPTOPFINDER"

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/laptopfinder/")

	// LAPTOPFINDER_SERVER_PORT maps to server.port
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env without overriding variables that are already set.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default so AutomaticEnv can bind it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.requests_per_second", 5.0)
	v.SetDefault("llm.burst", 5)
	v.SetDefault("llm.structured_output", false)

	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.source", "")

	v.SetDefault("classifier.model_path", "models/classifier.yaml")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("finder.result_limit", 10)
	v.SetDefault("finder.top_n", 20)
	v.SetDefault("finder.fuzzy_matching", true)
	v.SetDefault("finder.fuzzy_edit_distance", 1)

	v.SetDefault("log.mode", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// validate validates the configuration. A missing LLM key is allowed: the chatbot then reports a configuration error per request.
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch config.Catalog.Driver {
	case "memory":
	case "sqlite", "postgres":
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog DSN is required for driver '%s' (set %s_CATALOG_DSN)", config.Catalog.Driver, envPrefix)
		}
	default:
		return fmt.Errorf("catalog driver must be 'memory', 'sqlite' or 'postgres', got: %s", config.Catalog.Driver)
	}

	if config.Finder.ResultLimit <= 0 || config.Finder.TopN <= 0 {
		return fmt.Errorf("finder result_limit and top_n must be positive")
	}

	if config.Finder.FuzzyEditDistance < 0 {
		return fmt.Errorf("finder fuzzy_edit_distance must not be negative, got: %d", config.Finder.FuzzyEditDistance)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.Tracing.Enabled && config.Tracing.Exporter != "stdout" && config.Tracing.Exporter != "otlp" {
		return fmt.Errorf("tracing exporter must be 'stdout' or 'otlp', got: %s", config.Tracing.Exporter)
	}

	return nil
}
