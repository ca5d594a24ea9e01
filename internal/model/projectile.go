package model

import "github.com/mcoot/arenagame-go/internal/physics"

// ProjectileID identifies a projectile within its room
type ProjectileID string

// Projectile is a shot in flight. Velocity is in map units per second.
type Projectile struct {
	ID       ProjectileID
	Position physics.Vector2D
	Velocity physics.Vector2D
	OwnerID  PlayerID
}
