package config

import (
	"os"
	"strconv"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port        int
	DBPath      string
	FeedID      string // feed scope for entities from the static feed
	ServiceDays int    // consecutive service dates in the search window
	FeedsPath   string // YAML file listing realtime sources
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        envInt("TRANSITGRAPH_PORT", 8080),
		DBPath:      envStr("TRANSITGRAPH_DB_PATH", "./transitgraph.db"),
		FeedID:      envStr("TRANSITGRAPH_FEED_ID", "default"),
		ServiceDays: envInt("TRANSITGRAPH_SERVICE_DAYS", 3),
		FeedsPath:   envStr("TRANSITGRAPH_FEEDS", "./feeds.yml"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
