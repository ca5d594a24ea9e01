package cli

import (
	"os"

	"github.com/mcoot/arenagame-go/internal/protocol"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Encoding  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("ARENACTL_SERVER", "http://localhost:8080"),
		Encoding:  getEnvOrDefault("ARENACTL_ENCODING", protocol.EncodingJSON),
		Output:    "text",
		Verbose:   false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
