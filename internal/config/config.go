// Package config holds the devops-mcps configuration. Values come from
// an optional YAML file with environment variable overrides; the env
// names match what the upstream SDK ecosystems conventionally use
// (GITHUB_PERSONAL_ACCESS_TOKEN, JENKINS_URL, ...).
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"` // GitHub Enterprise endpoint, empty for github.com
}

// JenkinsConfig holds Jenkins connection settings.
type JenkinsConfig struct {
	URL       string        `yaml:"url"`
	User      string        `yaml:"user"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`    // API request timeout
	LogLength int           `yaml:"log_length"` // max console log bytes returned
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis", "tiered".
	Backend string        `yaml:"backend"`
	L1TTL   time.Duration `yaml:"l1_ttl"` // tiered only
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the redis/tiered backends.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ServerConfig holds server-wide settings.
type ServerConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables the metrics listener
}

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"` // OTLP HTTP endpoint, e.g. localhost:4318
	SampleRate float64 `yaml:"sample_rate"`
}

// Config is the central configuration struct embedding all component configs.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Jenkins   JenkinsConfig   `yaml:"jenkins"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Jenkins: JenkinsConfig{
			Timeout:   60 * time.Second,
			LogLength: 10240,
		},
		Cache: CacheConfig{
			Backend: "memory",
			L1TTL:   10 * time.Second,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Endpoint:   "localhost:4318",
			SampleRate: 1.0,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("GITHUB_PERSONAL_ACCESS_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHub.BaseURL = v
	}
	if v := os.Getenv("JENKINS_URL"); v != "" {
		cfg.Jenkins.URL = v
	}
	if v := os.Getenv("JENKINS_USER"); v != "" {
		cfg.Jenkins.User = v
	}
	if v := os.Getenv("JENKINS_TOKEN"); v != "" {
		cfg.Jenkins.Token = v
	}
	if v := os.Getenv("JENKINS_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Jenkins.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("LOG_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Jenkins.LogLength = n
		}
	}
	if v := os.Getenv("DEVOPS_MCPS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("DEVOPS_MCPS_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("DEVOPS_MCPS_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("DEVOPS_MCPS_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("DEVOPS_MCPS_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
		cfg.Telemetry.Enabled = true
	}
}

// Load resolves the effective configuration: defaults, then the config
// file if present, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
