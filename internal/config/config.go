// Package config loads the server configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"bubbleview/pkg/log"
)

// Config holds all environment configuration values for the server.
type Config struct {
	// Port is the port the HTTP server listens on.
	Port     string
	LogLevel log.Level

	// CacheTTL bounds how long fetched bubbles stay in memory.
	CacheTTL time.Duration

	// StorePath is the Pebble directory for locally created bubbles.
	StorePath string

	// UpstreamBaseURL is the artifact API. Empty disables remote lookups.
	UpstreamBaseURL string
	UpstreamUserID  string

	// HostsFile is an optional YAML table of link host labels.
	HostsFile string

	SelectionDelay time.Duration
	SessionTTL     time.Duration

	// MetadataMaxBody caps how much of a linked page is read.
	MetadataMaxBody int64
	// MetadataBrowser is empty, "exec" to launch a local Chrome, or a
	// DevTools websocket URL to attach to a remote one.
	MetadataBrowser string

	// ShareBaseURL prefixes the slug in share links.
	ShareBaseURL string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads a .env file if present, then environment variables.
// Unparseable values are logged and replaced by their defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.GlobalDebug("no .env file found, using environment variables")
	}

	port := getEnv("PORT", "3000")
	cfg := &Config{
		Port:            port,
		LogLevel:        getLevel("LOG_LEVEL", log.Info),
		CacheTTL:        time.Duration(getInt("CACHE_TTL_MINUTES", 5)) * time.Minute,
		StorePath:       getEnv("STORE_PATH", "data/bubbles"),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", ""),
		UpstreamUserID:  getEnv("UPSTREAM_USER_ID", ""),
		HostsFile:       getEnv("HOSTS_FILE", ""),
		SelectionDelay:  getDuration("SELECTION_DELAY", 200*time.Millisecond),
		SessionTTL:      getDuration("SESSION_TTL", 30*time.Minute),
		MetadataMaxBody: getSize("METADATA_MAX_BODY", 2*humanize.MiByte),
		MetadataBrowser: getEnv("METADATA_BROWSER", ""),
		ShareBaseURL:    getEnv("SHARE_BASE_URL", "http://localhost:"+port+"/b"),
		RateLimitRPS:    getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getInt("RATE_LIMIT_BURST", 10),
	}

	if cfg.UpstreamBaseURL == "" {
		log.GlobalWarn("UPSTREAM_BASE_URL is not set, serving local bubbles only")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.GlobalWarn("invalid integer, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.GlobalWarn("invalid number, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.GlobalWarn("invalid duration, using default", "key", key, "value", raw, "default", defaultValue.String())
		return defaultValue
	}
	return d
}

// getSize accepts human sizes such as "2MiB" or "512 kB".
func getSize(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil || n == 0 {
		log.GlobalWarn("invalid size, using default", "key", key, "value", raw, "default", humanize.IBytes(uint64(defaultValue)))
		return defaultValue
	}
	return int64(n)
}

func getLevel(key string, defaultValue log.Level) log.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var level log.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		log.GlobalWarn("invalid log level, using default", "key", key, "value", raw, "default", defaultValue.String())
		return defaultValue
	}
	return level
}
