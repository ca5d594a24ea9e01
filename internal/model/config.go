package model

import (
	"time"

	"github.com/mcoot/arenagame-go/internal/physics"
)

// GameConfig holds the simulation constants. Clients render with the
// same numbers, so changing them breaks interoperability.
type GameConfig struct {
	MapWidth          float64       `mapstructure:"map_width"`
	MapHeight         float64       `mapstructure:"map_height"`
	PlayerRadius      float64       `mapstructure:"player_radius"`
	ProjectileRadius  float64       `mapstructure:"projectile_radius"`
	ProjectileSpeed   float64       `mapstructure:"projectile_speed"` // units per second
	Damage            int           `mapstructure:"damage"`
	MaxHealth         int           `mapstructure:"max_health"`
	MinUpdateInterval time.Duration `mapstructure:"min_update_interval"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
}

// DefaultGameConfig returns the reference constants
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MapWidth:          physics.MapWidth,
		MapHeight:         physics.MapHeight,
		PlayerRadius:      20,
		ProjectileRadius:  5,
		ProjectileSpeed:   400,
		Damage:            20,
		MaxHealth:         100,
		MinUpdateInterval: 50 * time.Millisecond,
		TickInterval:      33 * time.Millisecond,
	}
}

// Bounds returns the playable map rectangle
func (c GameConfig) Bounds() physics.Bounds {
	return physics.Bounds{Width: c.MapWidth, Height: c.MapHeight}
}

// TickSeconds is the simulated time that passes in one tick
func (c GameConfig) TickSeconds() float64 {
	return c.TickInterval.Seconds()
}
