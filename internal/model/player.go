package model

import "github.com/mcoot/arenagame-go/internal/physics"

// PlayerID identifies a player. It is the id of the connection that
// owns the player, so a reconnecting client gets a new PlayerID.
type PlayerID string

// Player is a participant in a room
type Player struct {
	ID        PlayerID
	Username  string
	Position  physics.Vector2D
	Rotation  float64 // radians
	Health    int     // [0, MaxHealth]
	IsCreator bool
}

// Alive reports whether the player has health left
func (p Player) Alive() bool {
	return p.Health > 0
}
