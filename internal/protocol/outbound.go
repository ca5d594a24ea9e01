package protocol

import (
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
)

// PlayerState is a player as clients see it
type PlayerState struct {
	ID        string           `json:"id" msgpack:"id"`
	Username  string           `json:"username" msgpack:"username"`
	Position  physics.Vector2D `json:"position" msgpack:"position"`
	Rotation  float64          `json:"rotation" msgpack:"rotation"`
	Health    int              `json:"health" msgpack:"health"`
	IsCreator bool             `json:"isCreator" msgpack:"isCreator"`
}

// NewPlayerState converts a model player
func NewPlayerState(p model.Player) PlayerState {
	return PlayerState{
		ID:        string(p.ID),
		Username:  p.Username,
		Position:  p.Position,
		Rotation:  p.Rotation,
		Health:    p.Health,
		IsCreator: p.IsCreator,
	}
}

// PlayerStates converts players, preserving order
func PlayerStates(players []model.Player) []PlayerState {
	out := make([]PlayerState, 0, len(players))
	for _, p := range players {
		out = append(out, NewPlayerState(p))
	}
	return out
}

// ProjectileState is a projectile as clients see it
type ProjectileState struct {
	ID       string           `json:"id" msgpack:"id"`
	Position physics.Vector2D `json:"position" msgpack:"position"`
	Velocity physics.Vector2D `json:"velocity" msgpack:"velocity"`
	OwnerID  string           `json:"ownerId" msgpack:"ownerId"`
}

// NewProjectileState converts a model projectile
func NewProjectileState(p model.Projectile) ProjectileState {
	return ProjectileState{
		ID:       string(p.ID),
		Position: p.Position,
		Velocity: p.Velocity,
		OwnerID:  string(p.OwnerID),
	}
}

// ProjectileStates converts projectiles. The result is never nil so an
// empty set encodes as an empty list.
func ProjectileStates(projectiles []model.Projectile) []ProjectileState {
	out := make([]ProjectileState, 0, len(projectiles))
	for _, p := range projectiles {
		out = append(out, NewProjectileState(p))
	}
	return out
}

type RoomCreated struct {
	RoomID    string `json:"roomId" msgpack:"roomId"`
	PlayerID  string `json:"playerId" msgpack:"playerId"`
	IsCreator bool   `json:"isCreator" msgpack:"isCreator"`
}

type RoomJoined struct {
	RoomID    string        `json:"roomId" msgpack:"roomId"`
	PlayerID  string        `json:"playerId" msgpack:"playerId"`
	Players   []PlayerState `json:"players" msgpack:"players"`
	IsCreator bool          `json:"isCreator" msgpack:"isCreator"`
}

type PlayerJoined struct {
	Player PlayerState `json:"player" msgpack:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId" msgpack:"playerId"`
}

type CreatorChanged struct {
	NewCreatorID string        `json:"newCreatorId" msgpack:"newCreatorId"`
	Players      []PlayerState `json:"players" msgpack:"players"`
}

// PlayerUpdated carries only the fields that changed
type PlayerUpdated struct {
	PlayerID string            `json:"playerId" msgpack:"playerId"`
	Position *physics.Vector2D `json:"position,omitempty" msgpack:"position,omitempty"`
	Rotation *float64          `json:"rotation,omitempty" msgpack:"rotation,omitempty"`
	Health   *int              `json:"health,omitempty" msgpack:"health,omitempty"`
}

// Moved builds the update sent for an accepted movement report
func Moved(p model.Player) *PlayerUpdated {
	pos, rot := p.Position, p.Rotation
	return &PlayerUpdated{PlayerID: string(p.ID), Position: &pos, Rotation: &rot}
}

// HealthChanged builds the update sent after a hit
func HealthChanged(id model.PlayerID, health int) *PlayerUpdated {
	return &PlayerUpdated{PlayerID: string(id), Health: &health}
}

type GameStarted struct {
	RoomID string `json:"roomId" msgpack:"roomId"`
}

type ProjectileCreated struct {
	Projectile ProjectileState `json:"projectile" msgpack:"projectile"`
}

type ProjectilesUpdate struct {
	Projectiles []ProjectileState `json:"projectiles" msgpack:"projectiles"`
}

// ProjectileHit reports a projectile leaving play. PlayerID and Damage
// are empty for wall hits.
type ProjectileHit struct {
	ProjectileID string `json:"projectileId" msgpack:"projectileId"`
	PlayerID     string `json:"playerId,omitempty" msgpack:"playerId,omitempty"`
	Damage       int    `json:"damage,omitempty" msgpack:"damage,omitempty"`
}

type PlayerDied struct {
	PlayerID       string `json:"playerId" msgpack:"playerId"`
	KillerUsername string `json:"killerUsername" msgpack:"killerUsername"`
}

// GameOver has empty winner fields on a draw
type GameOver struct {
	WinnerUsername string `json:"winnerUsername" msgpack:"winnerUsername"`
	WinnerID       string `json:"winnerId" msgpack:"winnerId"`
}

type Error struct {
	Message string `json:"message" msgpack:"message"`
}

func (*RoomCreated) Event() string       { return EventRoomCreated }
func (*RoomJoined) Event() string        { return EventRoomJoined }
func (*PlayerJoined) Event() string      { return EventPlayerJoined }
func (*PlayerLeft) Event() string        { return EventPlayerLeft }
func (*CreatorChanged) Event() string    { return EventCreatorChanged }
func (*PlayerUpdated) Event() string     { return EventPlayerUpdated }
func (*GameStarted) Event() string       { return EventGameStarted }
func (*ProjectileCreated) Event() string { return EventProjectileCreated }
func (*ProjectilesUpdate) Event() string { return EventProjectilesUpdate }
func (*ProjectileHit) Event() string     { return EventProjectileHit }
func (*PlayerDied) Event() string        { return EventPlayerDied }
func (*GameOver) Event() string          { return EventGameOver }
func (*Error) Event() string             { return EventError }

func newOutbound(event string) (Message, bool) {
	switch event {
	case EventRoomCreated:
		return &RoomCreated{}, true
	case EventRoomJoined:
		return &RoomJoined{}, true
	case EventPlayerJoined:
		return &PlayerJoined{}, true
	case EventPlayerLeft:
		return &PlayerLeft{}, true
	case EventCreatorChanged:
		return &CreatorChanged{}, true
	case EventPlayerUpdated:
		return &PlayerUpdated{}, true
	case EventGameStarted:
		return &GameStarted{}, true
	case EventProjectileCreated:
		return &ProjectileCreated{}, true
	case EventProjectilesUpdate:
		return &ProjectilesUpdate{}, true
	case EventProjectileHit:
		return &ProjectileHit{}, true
	case EventPlayerDied:
		return &PlayerDied{}, true
	case EventGameOver:
		return &GameOver{}, true
	case EventError:
		return &Error{}, true
	}
	return nil, false
}
