package ws

import "time"

// Config holds connection tuning for the WebSocket transport
type Config struct {
	// DefaultEncoding is used when the client does not pass ?encoding=
	DefaultEncoding string        `mapstructure:"default_encoding"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	SendBufferSize  int           `mapstructure:"send_buffer_size"`
}

// DefaultConfig returns the standard transport settings
func DefaultConfig() Config {
	return Config{
		DefaultEncoding: "json",
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
		MaxMessageSize:  4096,
		SendBufferSize:  256,
	}
}
