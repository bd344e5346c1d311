package config_test

import (
	"testing"
	"time"

	"bubbleview/internal/config"
	"bubbleview/pkg/log"
)

func TestLoad_NoEnvironment_ReturnsDefaults(t *testing.T) {
	// Arrange
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "CACHE_TTL_MINUTES", "SELECTION_DELAY", "SESSION_TTL",
		"METADATA_MAX_BODY", "SHARE_BASE_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}

	// Act
	cfg := config.Load()

	// Assert
	if cfg.Port != "3000" {
		t.Errorf("Port: got %q, want 3000", cfg.Port)
	}
	if cfg.LogLevel != log.Info {
		t.Errorf("LogLevel: got %v, want INFO", cfg.LogLevel)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL: got %v", cfg.CacheTTL)
	}
	if cfg.SelectionDelay != 200*time.Millisecond {
		t.Errorf("SelectionDelay: got %v", cfg.SelectionDelay)
	}
	if cfg.MetadataMaxBody != 2<<20 {
		t.Errorf("MetadataMaxBody: got %d", cfg.MetadataMaxBody)
	}
	if cfg.ShareBaseURL != "http://localhost:3000/b" {
		t.Errorf("ShareBaseURL: got %q", cfg.ShareBaseURL)
	}
}

func TestLoad_ValidValues_AreParsed(t *testing.T) {
	// Arrange
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL_MINUTES", "10")
	t.Setenv("SELECTION_DELAY", "350ms")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("METADATA_MAX_BODY", "512 KiB")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("SHARE_BASE_URL", "https://bubbles.example/b")

	// Act
	cfg := config.Load()

	// Assert
	if cfg.Port != "8080" || cfg.LogLevel != log.Debug {
		t.Errorf("got port %q level %v", cfg.Port, cfg.LogLevel)
	}
	if cfg.CacheTTL != 10*time.Minute || cfg.SelectionDelay != 350*time.Millisecond || cfg.SessionTTL != time.Hour {
		t.Errorf("durations: %v %v %v", cfg.CacheTTL, cfg.SelectionDelay, cfg.SessionTTL)
	}
	if cfg.MetadataMaxBody != 512*1024 {
		t.Errorf("MetadataMaxBody: got %d", cfg.MetadataMaxBody)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Errorf("rate limit: %v %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.ShareBaseURL != "https://bubbles.example/b" {
		t.Errorf("ShareBaseURL: got %q", cfg.ShareBaseURL)
	}
}

func TestLoad_InvalidValues_FallBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*config.Config) bool
	}{
		{"log level", "LOG_LEVEL", "loud", func(c *config.Config) bool { return c.LogLevel == log.Info }},
		{"cache ttl", "CACHE_TTL_MINUTES", "soon", func(c *config.Config) bool { return c.CacheTTL == 5*time.Minute }},
		{"selection delay", "SELECTION_DELAY", "-1s", func(c *config.Config) bool { return c.SelectionDelay == 200*time.Millisecond }},
		{"max body", "METADATA_MAX_BODY", "lots", func(c *config.Config) bool { return c.MetadataMaxBody == 2<<20 }},
		{"rps", "RATE_LIMIT_RPS", "0", func(c *config.Config) bool { return c.RateLimitRPS == 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(tt.key, tt.value)

			// Act
			cfg := config.Load()

			// Assert
			if !tt.check(cfg) {
				t.Errorf("%s=%q did not fall back to its default: %+v", tt.key, tt.value, cfg)
			}
		})
	}
}
