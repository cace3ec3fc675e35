package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "smartpotato.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SMARTPOTATO_PORT")
	setString(&cfg.Server.CORSOrigin, "SMARTPOTATO_CORS_ORIGIN")
	setString(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	setString(&cfg.OpenRouter.Referer, "SMARTPOTATO_REFERER")
	setString(&cfg.OpenRouter.Model, "SMARTPOTATO_MODEL")
	setString(&cfg.Logging.Level, "SMARTPOTATO_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SMARTPOTATO_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "SMARTPOTATO_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "SMARTPOTATO_BREAKER_TIMEOUT")
	setInt64(&cfg.Tidy.CacheSizeMB, "SMARTPOTATO_TIDY_CACHE_SIZE_MB")
	setDuration(&cfg.Tidy.CacheTTL, "SMARTPOTATO_TIDY_CACHE_TTL")
	setDuration(&cfg.Orchestrator.TitleDebounce, "SMARTPOTATO_TITLE_DEBOUNCE")
	setDuration(&cfg.Orchestrator.MockLatency, "SMARTPOTATO_MOCK_LATENCY")
	setString(&cfg.State.Dir, "SMARTPOTATO_STATE_DIR")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.OpenRouter.BaseURL == "" {
		return errors.New("openrouter.base_url is required")
	}
	if cfg.OpenRouter.Model == "" {
		return errors.New("openrouter.model is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Tidy.CacheSizeMB < 1 {
		return errors.New("tidy.cache_size_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
