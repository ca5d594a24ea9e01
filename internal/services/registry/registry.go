// Package registry holds the players of a single room. It is not safe
// for concurrent use; the owning room serialises access.
package registry

import (
	"time"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
)

// Registry maps player ids to player state and remembers join order
type Registry struct {
	players     map[model.PlayerID]*model.Player
	order       []model.PlayerID
	lastUpdate  map[model.PlayerID]time.Time
	minInterval time.Duration
}

// New creates an empty Registry that accepts at most one movement
// update per player every minInterval
func New(minInterval time.Duration) *Registry {
	return &Registry{
		players:     make(map[model.PlayerID]*model.Player),
		lastUpdate:  make(map[model.PlayerID]time.Time),
		minInterval: minInterval,
	}
}

// Add inserts a player at the end of the join order
func (r *Registry) Add(p model.Player) error {
	if _, ok := r.players[p.ID]; ok {
		return model.ErrAlreadyInRoom
	}
	if _, ok := r.FindByUsername(p.Username); ok {
		return model.ErrUsernameTaken
	}
	r.players[p.ID] = &p
	r.order = append(r.order, p.ID)
	return nil
}

// Get returns a copy of the player
func (r *Registry) Get(id model.PlayerID) (model.Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// FindByUsername returns the player using the given username
func (r *Registry) FindByUsername(username string) (model.Player, bool) {
	for _, id := range r.order {
		if p := r.players[id]; p.Username == username {
			return *p, true
		}
	}
	return model.Player{}, false
}

// Players returns copies of all players in join order
func (r *Registry) Players() []model.Player {
	out := make([]model.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.players[id])
	}
	return out
}

// Len returns the number of players
func (r *Registry) Len() int {
	return len(r.order)
}

// Move applies a client-reported position and rotation. Updates closer
// together than the minimum interval are dropped with ErrUpdateTooSoon;
// accepted values are stored as reported.
func (r *Registry) Move(id model.PlayerID, pos physics.Vector2D, rotation float64, now time.Time) (model.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return model.Player{}, model.ErrPlayerNotFound
	}
	if last, seen := r.lastUpdate[id]; seen && now.Sub(last) < r.minInterval {
		return model.Player{}, model.ErrUpdateTooSoon
	}
	r.lastUpdate[id] = now
	p.Position = pos
	p.Rotation = rotation
	return *p, nil
}

// ApplyDamage subtracts amount from the player's health, never going
// below zero. It returns the new health and whether this call killed
// the player.
func (r *Registry) ApplyDamage(id model.PlayerID, amount int) (health int, killed bool, err error) {
	p, ok := r.players[id]
	if !ok {
		return 0, false, model.ErrPlayerNotFound
	}
	wasAlive := p.Alive()
	p.Health = max(0, p.Health-amount)
	return p.Health, wasAlive && !p.Alive(), nil
}

// Remove deletes a player and returns its last state
func (r *Registry) Remove(id model.PlayerID) (model.Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return model.Player{}, false
	}
	delete(r.players, id)
	delete(r.lastUpdate, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *p, true
}

// SetCreator marks id as the only creator
func (r *Registry) SetCreator(id model.PlayerID) error {
	if _, ok := r.players[id]; !ok {
		return model.ErrPlayerNotFound
	}
	for pid, p := range r.players {
		p.IsCreator = pid == id
	}
	return nil
}

// SetHealth overwrites a player's health
func (r *Registry) SetHealth(id model.PlayerID, health int) {
	if p, ok := r.players[id]; ok {
		p.Health = health
	}
}

// First returns the earliest-joined player
func (r *Registry) First() (model.Player, bool) {
	if len(r.order) == 0 {
		return model.Player{}, false
	}
	return *r.players[r.order[0]], true
}
