// Package config provides hierarchical configuration loading for Smart Potato.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// PlaceholderAPIKey is the literal placeholder shipped in example env files.
// A key equal to it is treated the same as no key at all.
const PlaceholderAPIKey = "your_api_key_here"

// Config holds all runtime configuration for the Smart Potato core service.
type Config struct {
	Server       Server       `yaml:"server"`
	OpenRouter   OpenRouter   `yaml:"openrouter"`
	Logging      Logging      `yaml:"logging"`
	Breaker      Breaker      `yaml:"breaker"`
	Tidy         Tidy         `yaml:"tidy"`
	Orchestrator Orchestrator `yaml:"orchestrator"`
	State        State        `yaml:"state"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// OpenRouter holds upstream completion endpoint configuration.
type OpenRouter struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Referer string `yaml:"referer"` // caller-identifying HTTP-Referer header
	Model   string `yaml:"model"`
}

// UseMock reports whether the deterministic mock adapter should be used
// instead of the real client.
func (o OpenRouter) UseMock() bool {
	return o.APIKey == "" || o.APIKey == PlaceholderAPIKey
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds circuit breaker configuration for the upstream endpoint.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Tidy holds conversation grouping configuration.
type Tidy struct {
	CacheSizeMB int64         `yaml:"cache_size_mb"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// Orchestrator holds conversation orchestration configuration.
type Orchestrator struct {
	TitleDebounce time.Duration `yaml:"title_debounce"` // delay before the auto-title job runs
	MockLatency   time.Duration `yaml:"mock_latency"`   // simulated latency of the mock adapter
}

// State holds the directory for the single persisted first-visit flag.
type State struct {
	Dir string `yaml:"dir"` // empty means the user config directory
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		OpenRouter: OpenRouter{
			BaseURL: "https://openrouter.ai/api/v1",
			Referer: "http://localhost:8080",
			Model:   "deepseek/deepseek-r1:free",
		},
		Logging: Logging{
			Level:   "info",
			Service: "smartpotato-core",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Tidy: Tidy{
			CacheSizeMB: 8,
			CacheTTL:    5 * time.Minute,
		},
		Orchestrator: Orchestrator{
			TitleDebounce: 700 * time.Millisecond,
			MockLatency:   150 * time.Millisecond,
		},
	}
}
