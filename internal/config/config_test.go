package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed for a missing file: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Marketplace.GraphQLEndpoint == "" {
		t.Error("Expected a default marketplace endpoint")
	}
	if cfg.Extension.CacheTTL != 60*time.Second {
		t.Errorf("Expected default cache TTL 60s, got %s", cfg.Extension.CacheTTL)
	}
	if cfg.Extension.CacheCapacity != 500 {
		t.Errorf("Expected default cache capacity 500, got %d", cfg.Extension.CacheCapacity)
	}
	if cfg.Valuation.BatchLimit != 10 {
		t.Errorf("Expected default batch limit 10, got %d", cfg.Valuation.BatchLimit)
	}
	if cfg.Access.RateWindow != time.Minute || cfg.Access.RateMax != 30 {
		t.Errorf("Unexpected rate gate defaults: %s / %d", cfg.Access.RateWindow, cfg.Access.RateMax)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
extension:
  secret: s3cret
  cache_ttl: 2m
access:
  trial_requests: 5
  rate_max: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Extension.Secret != "s3cret" {
		t.Errorf("Expected secret from file, got %q", cfg.Extension.Secret)
	}
	if cfg.Extension.CacheTTL != 2*time.Minute {
		t.Errorf("Expected cache TTL 2m, got %s", cfg.Extension.CacheTTL)
	}
	if cfg.Access.TrialRequests != 5 || cfg.Access.RateMax != 10 {
		t.Errorf("Unexpected access values: %d / %d", cfg.Access.TrialRequests, cfg.Access.RateMax)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("TRIAL_REQUESTS", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Expected env override 7070, got %s", cfg.Server.Port)
	}
	if cfg.Access.TrialRequests != 42 {
		t.Errorf("Expected env override 42, got %d", cfg.Access.TrialRequests)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: a map"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Extension.CacheCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero cache capacity")
	}
}
