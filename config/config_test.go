package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv removes every LAPTOPFINDER_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, envPrefix+"_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

// inTempDir runs the test from an empty directory so no config.yaml or .env is picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	originalDir, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.LLM.APIKey != "" {
			t.Errorf("LLM.APIKey = %s, want empty", cfg.LLM.APIKey)
		}
		if cfg.LLM.Model != "gemini-1.5-flash" {
			t.Errorf("LLM.Model = %s, want gemini-1.5-flash", cfg.LLM.Model)
		}
		if cfg.LLM.Timeout != 30*time.Second {
			t.Errorf("LLM.Timeout = %v, want 30s", cfg.LLM.Timeout)
		}
		if cfg.Catalog.Driver != "memory" {
			t.Errorf("Catalog.Driver = %s, want memory", cfg.Catalog.Driver)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Finder.ResultLimit != 10 || cfg.Finder.TopN != 20 {
			t.Errorf("Finder = %+v, want result_limit 10 and top_n 20", cfg.Finder)
		}
		if !cfg.Finder.FuzzyMatching || cfg.Finder.FuzzyEditDistance != 1 {
			t.Errorf("Finder = %+v, want fuzzy matching on with edit distance 1", cfg.Finder)
		}
		if cfg.Tracing.Enabled {
			t.Errorf("Tracing.Enabled = true, want false")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)
		t.Setenv("LAPTOPFINDER_SERVER_PORT", "9090")
		t.Setenv("LAPTOPFINDER_SERVER_ENVIRONMENT", "production")
		t.Setenv("LAPTOPFINDER_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("LAPTOPFINDER_LLM_API_KEY", "custom-api-key")
		t.Setenv("LAPTOPFINDER_LLM_STRUCTURED_OUTPUT", "true")
		t.Setenv("LAPTOPFINDER_LLM_REQUESTS_PER_SECOND", "2.5")
		t.Setenv("LAPTOPFINDER_CATALOG_DRIVER", "sqlite")
		t.Setenv("LAPTOPFINDER_CATALOG_DSN", "file:laptops.db")
		t.Setenv("LAPTOPFINDER_CACHE_TYPE", "redis")
		t.Setenv("LAPTOPFINDER_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("LAPTOPFINDER_CACHE_TTL", "1h")
		t.Setenv("LAPTOPFINDER_RATELIMIT_PER_IP", "200")
		t.Setenv("LAPTOPFINDER_FINDER_TOP_N", "50")
		t.Setenv("LAPTOPFINDER_FINDER_FUZZY_MATCHING", "false")
		t.Setenv("LAPTOPFINDER_FINDER_FUZZY_EDIT_DISTANCE", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("Server.AllowedOrigins = %v, want two origins", cfg.Server.AllowedOrigins)
		}
		if cfg.LLM.APIKey != "custom-api-key" {
			t.Errorf("LLM.APIKey = %s, want custom-api-key", cfg.LLM.APIKey)
		}
		if !cfg.LLM.StructuredOutput {
			t.Errorf("LLM.StructuredOutput = false, want true")
		}
		if cfg.LLM.RequestsPerSecond != 2.5 {
			t.Errorf("LLM.RequestsPerSecond = %v, want 2.5", cfg.LLM.RequestsPerSecond)
		}
		if cfg.Catalog.Driver != "sqlite" || cfg.Catalog.DSN != "file:laptops.db" {
			t.Errorf("Catalog = %+v, want sqlite file:laptops.db", cfg.Catalog)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Finder.TopN != 50 {
			t.Errorf("Finder.TopN = %d, want 50", cfg.Finder.TopN)
		}
		if cfg.Finder.FuzzyMatching || cfg.Finder.FuzzyEditDistance != 2 {
			t.Errorf("Finder = %+v, want fuzzy matching off with edit distance 2", cfg.Finder)
		}
	})

	t.Run("reads config.yaml", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)
		yaml := "server:\n  port: \"7070\"\nfinder:\n  result_limit: 5\n"
		if err := os.WriteFile("config.yaml", []byte(yaml), 0644); err != nil {
			t.Fatalf("Failed to write config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if cfg.Finder.ResultLimit != 5 {
			t.Errorf("Finder.ResultLimit = %d, want 5", cfg.Finder.ResultLimit)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)
		t.Setenv("LAPTOPFINDER_CACHE_TYPE", "invalid")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)
		t.Setenv("LAPTOPFINDER_CACHE_TYPE", "redis")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
		if err != nil && err.Error() != "invalid configuration: Redis URL is required when cache type is 'redis'" {
			t.Errorf("Load() error = %v, want 'Redis URL is required'", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file and skips comments", func(t *testing.T) {
		inTempDir(t)
		envContent := `
# Comment line
LAPTOPFINDER_TEST_VAR_1=value1

LAPTOPFINDER_TEST_VAR_2=value2
# LAPTOPFINDER_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() {
			os.Unsetenv("LAPTOPFINDER_TEST_VAR_1")
			os.Unsetenv("LAPTOPFINDER_TEST_VAR_2")
		})

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("LAPTOPFINDER_TEST_VAR_1") != "value1" {
			t.Errorf("LAPTOPFINDER_TEST_VAR_1 = %s, want value1", os.Getenv("LAPTOPFINDER_TEST_VAR_1"))
		}
		if os.Getenv("LAPTOPFINDER_TEST_VAR_2") != "value2" {
			t.Errorf("LAPTOPFINDER_TEST_VAR_2 = %s, want value2", os.Getenv("LAPTOPFINDER_TEST_VAR_2"))
		}
		if _, ok := os.LookupEnv("LAPTOPFINDER_TEST_COMMENTED"); ok {
			t.Errorf("LAPTOPFINDER_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("LAPTOPFINDER_TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("LAPTOPFINDER_TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("LAPTOPFINDER_TEST_OVERRIDE") != "existing-value" {
			t.Errorf("LAPTOPFINDER_TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("LAPTOPFINDER_TEST_OVERRIDE"))
		}
	})

	t.Run(".env values reach Load", func(t *testing.T) {
		clearEnv(t)
		inTempDir(t)
		if err := os.WriteFile(".env", []byte("LAPTOPFINDER_LLM_API_KEY=from-dotenv\n"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("LAPTOPFINDER_LLM_API_KEY") })

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.LLM.APIKey != "from-dotenv" {
			t.Errorf("LLM.APIKey = %s, want from-dotenv", cfg.LLM.APIKey)
		}
	})
}

func validConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{Driver: "memory"},
		Cache:   CacheConfig{Type: "memory"},
		Finder:  FinderConfig{ResultLimit: 10, TopN: 20},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "missing llm key is allowed", mutate: func(c *Config) { c.LLM.APIKey = "" }},
		{name: "invalid cache type", mutate: func(c *Config) { c.Cache.Type = "invalid-type" }, wantErr: true},
		{name: "redis with URL", mutate: func(c *Config) { c.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"} }},
		{name: "redis without URL", mutate: func(c *Config) { c.Cache = CacheConfig{Type: "redis"} }, wantErr: true},
		{name: "sqlite needs dsn", mutate: func(c *Config) { c.Catalog.Driver = "sqlite" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.Catalog = CatalogConfig{Driver: "postgres", DSN: "host=db"} }},
		{name: "unknown catalog driver", mutate: func(c *Config) { c.Catalog.Driver = "mongo" }, wantErr: true},
		{name: "zero result limit", mutate: func(c *Config) { c.Finder.ResultLimit = 0 }, wantErr: true},
		{name: "negative fuzzy edit distance", mutate: func(c *Config) { c.Finder.FuzzyEditDistance = -1 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.PerIP = -1 }, wantErr: true},
		{name: "unknown exporter when enabled", mutate: func(c *Config) { c.Tracing = TracingConfig{Enabled: true, Exporter: "zipkin"} }, wantErr: true},
		{name: "unknown exporter when disabled", mutate: func(c *Config) { c.Tracing = TracingConfig{Exporter: "zipkin"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("validate() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validate() error = %v, want nil", err)
			}
		})
	}
}
