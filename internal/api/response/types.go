package response

import (
	"time"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
)

// Health is the body of the health check
type Health struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// Player represents a seated player in API responses
type Player struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Position  physics.Vector2D `json:"position"`
	Rotation  float64          `json:"rotation"`
	Health    int              `json:"health"`
	IsCreator bool             `json:"is_creator"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:        string(p.ID),
		Username:  p.Username,
		Position:  p.Position,
		Rotation:  p.Rotation,
		Health:    p.Health,
		IsCreator: p.IsCreator,
	}
}

// Room is the full view of one room
type Room struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	CreatorID       string     `json:"creator_id,omitempty"`
	Players         []Player   `json:"players"`
	ProjectileCount int        `json:"projectile_count"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
}

// RoomFromModel converts model.RoomSummary
func RoomFromModel(s model.RoomSummary) Room {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}

	var started *time.Time
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		started = &t
	}

	return Room{
		ID:              string(s.ID),
		Status:          string(s.Status),
		CreatorID:       string(s.CreatorID),
		Players:         players,
		ProjectileCount: s.ProjectileCount,
		CreatedAt:       s.CreatedAt,
		StartedAt:       started,
		LastActivityAt:  s.LastActivityAt,
	}
}

// RoomListItem is one line of the room listing
type RoomListItem struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomList is the body of GET /rooms
type RoomList struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListFromModel converts the directory listing
func RoomListFromModel(rooms []model.RoomSummary) RoomList {
	items := make([]RoomListItem, len(rooms))
	for i, r := range rooms {
		items[i] = RoomListItem{
			ID:          string(r.ID),
			Status:      string(r.Status),
			PlayerCount: len(r.Players),
			CreatedAt:   r.CreatedAt,
		}
	}
	return RoomList{Rooms: items}
}

// MatchList is the body of GET /matches, newest first
type MatchList struct {
	Matches []model.MatchResult `json:"matches"`
}

// MatchListFromModel copies stored matches into a listing
func MatchListFromModel(matches []*model.MatchResult) MatchList {
	out := make([]model.MatchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, *m)
	}
	return MatchList{Matches: out}
}
