package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string `mapstructure:"url"`

	// Pool settings
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MatchTTL bounds how long match records are kept. Zero keeps them
	// forever. Player stats never expire.
	MatchTTL time.Duration `mapstructure:"match_ttl"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MatchTTL:     30 * 24 * time.Hour,
	}
}
