package model

import "time"

// RoomID is a short human-readable code used to join a room
type RoomID string

// RoomStatus represents where a room is in its lifecycle
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Lobby, players can join
	RoomStatusPlaying  RoomStatus = "playing"  // Simulation running, no late joins
	RoomStatusFinished RoomStatus = "finished" // Terminal
)

// RoomSummary is a read-only copy of a room's state
type RoomSummary struct {
	ID              RoomID
	Status          RoomStatus
	CreatorID       PlayerID
	Players         []Player // join order
	ProjectileCount int
	CreatedAt       time.Time
	StartedAt       time.Time // zero until the game starts
	LastActivityAt  time.Time
}

// GetPlayer returns the player with the given id, or nil
func (r *RoomSummary) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// DisconnectRecord remembers a player who dropped so a rejoin with the
// same username inside the grace window counts as a reconnection
type DisconnectRecord struct {
	Username       string
	RoomID         RoomID
	WasCreator     bool
	Health         int
	DisconnectedAt time.Time
}

// WithinGrace reports whether the record can still be claimed at now
func (d DisconnectRecord) WithinGrace(now time.Time, grace time.Duration) bool {
	return now.Sub(d.DisconnectedAt) <= grace
}
