package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.Backend != "memory" {
		t.Fatalf("expected memory backend default, got %q", cfg.Cache.Backend)
	}
	if cfg.Jenkins.LogLength != 10240 {
		t.Fatalf("expected 10240 log length default, got %d", cfg.Jenkins.LogLength)
	}
	if cfg.Jenkins.Timeout != 60*time.Second {
		t.Fatalf("expected 60s Jenkins timeout default, got %v", cfg.Jenkins.Timeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
github:
  token: file-token
jenkins:
  url: https://jenkins.example.com
  user: admin
cache:
  backend: tiered
  redis:
    addr: redis.example.com:6379
server:
  log_level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.GitHub.Token != "file-token" {
		t.Errorf("github token not loaded: %q", cfg.GitHub.Token)
	}
	if cfg.Jenkins.URL != "https://jenkins.example.com" {
		t.Errorf("jenkins url not loaded: %q", cfg.Jenkins.URL)
	}
	if cfg.Cache.Backend != "tiered" {
		t.Errorf("cache backend not loaded: %q", cfg.Cache.Backend)
	}
	// Unset fields keep their defaults.
	if cfg.Jenkins.LogLength != 10240 {
		t.Errorf("default log length lost on file load: %d", cfg.Jenkins.LogLength)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GITHUB_PERSONAL_ACCESS_TOKEN", "env-token")
	t.Setenv("JENKINS_URL", "https://ci.example.com")
	t.Setenv("JENKINS_USER", "bot")
	t.Setenv("JENKINS_TOKEN", "secret")
	t.Setenv("JENKINS_TIMEOUT", "30")
	t.Setenv("LOG_LENGTH", "5120")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.GitHub.Token != "env-token" {
		t.Errorf("github token override missing: %q", cfg.GitHub.Token)
	}
	if cfg.Jenkins.URL != "https://ci.example.com" || cfg.Jenkins.User != "bot" || cfg.Jenkins.Token != "secret" {
		t.Errorf("jenkins overrides missing: %+v", cfg.Jenkins)
	}
	if cfg.Jenkins.Timeout != 30*time.Second {
		t.Errorf("jenkins timeout override missing: %v", cfg.Jenkins.Timeout)
	}
	if cfg.Jenkins.LogLength != 5120 {
		t.Errorf("log length override missing: %d", cfg.Jenkins.LogLength)
	}
}

func TestLoadFromEnv_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("JENKINS_TIMEOUT", "not-a-number")
	t.Setenv("LOG_LENGTH", "-1")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Jenkins.Timeout != 60*time.Second {
		t.Errorf("invalid timeout should keep default, got %v", cfg.Jenkins.Timeout)
	}
	if cfg.Jenkins.LogLength != 10240 {
		t.Errorf("invalid log length should keep default, got %d", cfg.Jenkins.LogLength)
	}
}
