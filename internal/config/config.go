// Package config loads server settings from defaults, an optional YAML
// file and ARENA_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/mcoot/arenagame-go/internal/api"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/services/directory"
	"github.com/mcoot/arenagame-go/internal/services/history"
	redisstorage "github.com/mcoot/arenagame-go/internal/storage/redis"
	"github.com/mcoot/arenagame-go/internal/transport/ws"
)

// EnvPrefix prefixes every environment override, e.g. ARENA_SERVER_PORT
const EnvPrefix = "ARENA"

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

type Config struct {
	Server    api.ServerConfig `mapstructure:"server"`
	Log       LogConfig        `mapstructure:"log"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Game      model.GameConfig `mapstructure:"game"`
	Directory directory.Config `mapstructure:"directory"`
	Transport ws.Config        `mapstructure:"transport"`
	History   HistoryConfig    `mapstructure:"history"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

type StorageConfig struct {
	Type  string              `mapstructure:"type"`
	Redis redisstorage.Config `mapstructure:"redis"`
}

type HistoryConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Server:    api.DefaultServerConfig(),
		Log:       LogConfig{Level: "info", Format: "json"},
		Storage:   StorageConfig{Type: StorageTypeMemory, Redis: redisstorage.DefaultConfig()},
		Game:      model.DefaultGameConfig(),
		Directory: directory.DefaultConfig(),
		Transport: ws.DefaultConfig(),
		History:   HistoryConfig{QueueSize: history.DefaultQueueSize},
	}
}

// Load reads configuration. path names a config file; when empty an
// arena.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("arena")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.url is required for redis storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be %q or %q, got %q", StorageTypeMemory, StorageTypeRedis, c.Storage.Type))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Game.TickInterval <= 0 {
		errs = append(errs, errors.New("game.tick_interval must be positive"))
	}
	if c.Game.MapWidth <= 2*c.Game.PlayerRadius || c.Game.MapHeight <= 2*c.Game.PlayerRadius {
		errs = append(errs, errors.New("game map must be larger than a player"))
	}
	if c.Directory.ReapInterval <= 0 {
		errs = append(errs, errors.New("directory.reap_interval must be positive"))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger described by the log section
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// setDefaults registers every key so environment overrides apply even
// when no config file mentions them
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.redis.url", d.Storage.Redis.URL)
	v.SetDefault("storage.redis.pool_size", d.Storage.Redis.PoolSize)
	v.SetDefault("storage.redis.min_idle_conns", d.Storage.Redis.MinIdleConns)
	v.SetDefault("storage.redis.match_ttl", d.Storage.Redis.MatchTTL)

	v.SetDefault("game.map_width", d.Game.MapWidth)
	v.SetDefault("game.map_height", d.Game.MapHeight)
	v.SetDefault("game.player_radius", d.Game.PlayerRadius)
	v.SetDefault("game.projectile_radius", d.Game.ProjectileRadius)
	v.SetDefault("game.projectile_speed", d.Game.ProjectileSpeed)
	v.SetDefault("game.damage", d.Game.Damage)
	v.SetDefault("game.max_health", d.Game.MaxHealth)
	v.SetDefault("game.min_update_interval", d.Game.MinUpdateInterval)
	v.SetDefault("game.tick_interval", d.Game.TickInterval)

	v.SetDefault("directory.reap_interval", d.Directory.ReapInterval)
	v.SetDefault("directory.room_expiry", d.Directory.RoomExpiry)
	v.SetDefault("directory.reconnect_grace", d.Directory.ReconnectGrace)

	v.SetDefault("transport.default_encoding", d.Transport.DefaultEncoding)
	v.SetDefault("transport.write_wait", d.Transport.WriteWait)
	v.SetDefault("transport.pong_wait", d.Transport.PongWait)
	v.SetDefault("transport.ping_period", d.Transport.PingPeriod)
	v.SetDefault("transport.max_message_size", d.Transport.MaxMessageSize)
	v.SetDefault("transport.send_buffer_size", d.Transport.SendBufferSize)

	v.SetDefault("history.queue_size", d.History.QueueSize)
}
