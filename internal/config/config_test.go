package config_test

import (
	"testing"
	"time"

	"jobpilot/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/jobpilot?sslmode=disable")
	t.Setenv("APPLY_GATEWAY_URL", "http://localhost:8080")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.RunInterval != time.Hour {
		t.Errorf("RunInterval = %v, want 1h", cfg.RunInterval)
	}
	if cfg.AutoApplyThreshold != 85 || cfg.BrowseThreshold != 80 {
		t.Errorf("thresholds = %d/%d, want 85/80", cfg.AutoApplyThreshold, cfg.BrowseThreshold)
	}
	if cfg.PerRunCap != 10 {
		t.Errorf("PerRunCap = %d, want 10", cfg.PerRunCap)
	}
	if cfg.PacingMin != 5*time.Second || cfg.PacingMax != 10*time.Second {
		t.Errorf("pacing = %v..%v, want 5s..10s", cfg.PacingMin, cfg.PacingMax)
	}
	if cfg.UserConcurrency != 1 {
		t.Errorf("UserConcurrency = %d, want 1", cfg.UserConcurrency)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("APPLY_GATEWAY_URL", "http://localhost:8080")
	if _, err := config.Load(); err == nil {
		t.Error("Load should fail without POSTGRES_DSN")
	}

	t.Setenv("POSTGRES_DSN", "postgres://localhost/jobpilot")
	t.Setenv("APPLY_GATEWAY_URL", "")
	if _, err := config.Load(); err == nil {
		t.Error("Load should fail without APPLY_GATEWAY_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RUN_INTERVAL", "30m")
	t.Setenv("RUN_ONCE", "true")
	t.Setenv("PER_RUN_CAP", "5")
	t.Setenv("PACING_MIN", "2s")
	t.Setenv("PACING_MAX", "4s")
	t.Setenv("USER_CONCURRENCY", "4")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}

	if cfg.RunInterval != 30*time.Minute || !cfg.RunOnce {
		t.Errorf("RunInterval/RunOnce = %v/%v", cfg.RunInterval, cfg.RunOnce)
	}
	if cfg.PerRunCap != 5 || cfg.UserConcurrency != 4 {
		t.Errorf("PerRunCap/UserConcurrency = %d/%d", cfg.PerRunCap, cfg.UserConcurrency)
	}
	if cfg.PacingMin != 2*time.Second || cfg.PacingMax != 4*time.Second {
		t.Errorf("pacing = %v..%v", cfg.PacingMin, cfg.PacingMax)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"RUN_INTERVAL", "often"},
		{"RUN_ONCE", "yep"},
		{"AUTO_APPLY_THRESHOLD", "high"},
		{"PER_RUN_CAP", "1.5"},
		{"USER_CONCURRENCY", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); err == nil {
				t.Errorf("Load should reject %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *config.Config {
		setRequired(t)
		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"run interval too small", func(c *config.Config) { c.RunInterval = 30 * time.Second }},
		{"threshold above 100", func(c *config.Config) { c.AutoApplyThreshold = 120 }},
		{"browse threshold negative", func(c *config.Config) { c.BrowseThreshold = -1 }},
		{"zero per-run cap", func(c *config.Config) { c.PerRunCap = 0 }},
		{"inverted pacing bounds", func(c *config.Config) { c.PacingMin = 10 * time.Second; c.PacingMax = 5 * time.Second }},
		{"concurrency too high", func(c *config.Config) { c.UserConcurrency = 16 }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}
