package room

import (
	"sync"
	"time"

	"github.com/mcoot/arenagame-go/internal/dependencies/clock"
	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
	"github.com/mcoot/arenagame-go/internal/dependencies/random"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
	"github.com/mcoot/arenagame-go/internal/services/projectile"
	"github.com/mcoot/arenagame-go/internal/services/registry"
)

// Deps are the collaborators shared by every room
type Deps struct {
	Config      model.GameConfig
	Grace       time.Duration // reconnection grace window
	Projectiles *projectile.Service
	Clock       clock.Clock
	Random      random.Random
	IDs         idgen.Generator
}

// Room is one isolated game session. Every exported method takes the
// room lock, so a room is safe to share between the session handler and
// the tick loop.
type Room struct {
	mu   sync.Mutex
	deps Deps

	id          model.RoomID
	players     *registry.Registry
	projectiles []model.Projectile
	status      model.RoomStatus
	creatorID   model.PlayerID

	createdAt    time.Time
	startedAt    time.Time
	lastActivity time.Time

	// Match bookkeeping, reset on Start
	participants []*model.MatchParticipant
	// Usernames that dropped mid-game, keyed to when they left
	awaiting map[string]time.Time
}

// JoinResult describes a successful join
type JoinResult struct {
	Player         model.Player
	Players        []model.Player
	Reconnected    bool
	CreatorChanged bool
	// CreatorID is the room's creator after the join
	CreatorID model.PlayerID
}

// LeaveResult describes a player leaving
type LeaveResult struct {
	Player     model.Player
	WasCreator bool
	NewCreator *model.Player
	Players    []model.Player
}

// New creates a waiting room with the creator seated
func New(id model.RoomID, creatorID model.PlayerID, username string, deps Deps) *Room {
	now := deps.Clock.Now()
	r := &Room{
		deps:         deps,
		id:           id,
		players:      registry.New(deps.Config.MinUpdateInterval),
		status:       model.RoomStatusWaiting,
		createdAt:    now,
		lastActivity: now,
		awaiting:     make(map[string]time.Time),
	}
	creator := r.spawn(creatorID, username)
	creator.IsCreator = true
	_ = r.players.Add(creator)
	r.creatorID = creatorID
	return r
}

// ID returns the room id
func (r *Room) ID() model.RoomID {
	return r.id
}

// Status returns the current lifecycle status
func (r *Room) Status() model.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// PlayerCount returns the number of seated players
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.Len()
}

// HasPlayer reports whether the player is seated
func (r *Room) HasPlayer(id model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players.Get(id)
	return ok
}

// OwnedBy reports whether the current creator uses username
func (r *Room) OwnedBy(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	creator, ok := r.players.Get(r.creatorID)
	return ok && creator.Username == username
}

// LastActivity returns when the room last changed
func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

// Summary returns a copy of the room state
func (r *Room) Summary() model.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.RoomSummary{
		ID:              r.id,
		Status:          r.status,
		CreatorID:       r.creatorID,
		Players:         r.players.Players(),
		ProjectileCount: len(r.projectiles),
		CreatedAt:       r.createdAt,
		StartedAt:       r.startedAt,
		LastActivityAt:  r.lastActivity,
	}
}

// Join seats a player. rec is the caller's matching disconnect record
// when the join is a reconnection, nil otherwise. Reconnections may
// enter a game in progress and get their creator status back.
func (r *Room) Join(id model.PlayerID, username string, rec *model.DisconnectRecord) (*JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec == nil {
		if r.status == model.RoomStatusPlaying {
			return nil, model.ErrGameInProgress
		}
		if _, taken := r.players.FindByUsername(username); taken {
			return nil, model.ErrUsernameTaken
		}
	}

	previous := r.creatorID
	if stale, ok := r.players.FindByUsername(username); ok && rec != nil {
		r.players.Remove(stale.ID)
		if stale.IsCreator {
			r.promoteLocked()
		}
	}

	p := r.spawn(id, username)
	if rec != nil && r.status == model.RoomStatusPlaying && rec.Health > 0 {
		p.Health = rec.Health
	}
	if err := r.players.Add(p); err != nil {
		return nil, err
	}

	result := &JoinResult{Reconnected: rec != nil}
	if rec != nil {
		delete(r.awaiting, username)
		if part := r.participant(username); part != nil {
			part.PlayerID = id
			part.Forfeited = false
		}
	}

	switch {
	case r.players.Len() == 1:
		r.setCreator(id)
	case rec != nil && rec.WasCreator:
		r.setCreator(id)
	}
	result.CreatorChanged = previous != "" && previous != r.creatorID
	result.CreatorID = r.creatorID

	r.lastActivity = r.deps.Clock.Now()
	result.Player, _ = r.players.Get(id)
	result.Players = r.players.Players()
	return result, nil
}

// Leave removes a player. A departing creator hands over to the
// earliest-joined remaining player.
func (r *Room) Leave(id model.PlayerID) (*LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players.Remove(id)
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	now := r.deps.Clock.Now()
	r.lastActivity = now

	result := &LeaveResult{Player: p, WasCreator: p.IsCreator}
	if r.status == model.RoomStatusPlaying {
		r.awaiting[p.Username] = now
		if part := r.participant(p.Username); part != nil {
			part.Forfeited = true
		}
	}

	if p.IsCreator {
		result.NewCreator = r.promoteLocked()
	}
	result.Players = r.players.Players()
	return result, nil
}

// Start moves the room from waiting to playing
func (r *Room) Start(id model.PlayerID) ([]model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players.Get(id); !ok {
		return nil, model.ErrPlayerNotFound
	}
	if id != r.creatorID {
		return nil, model.ErrNotCreator
	}
	switch r.status {
	case model.RoomStatusPlaying:
		return nil, model.ErrGameInProgress
	case model.RoomStatusFinished:
		return nil, model.ErrGameFinished
	}
	if r.players.Len() < 2 {
		return nil, model.ErrNotEnoughPlayers
	}

	now := r.deps.Clock.Now()
	r.status = model.RoomStatusPlaying
	r.startedAt = now
	r.lastActivity = now
	r.projectiles = nil
	r.awaiting = make(map[string]time.Time)

	players := r.players.Players()
	r.participants = make([]*model.MatchParticipant, 0, len(players))
	for _, p := range players {
		r.participants = append(r.participants, &model.MatchParticipant{
			PlayerID: p.ID,
			Username: p.Username,
		})
	}
	return players, nil
}

// Move applies a movement update. ErrUpdateTooSoon means the update was
// dropped and nothing should be broadcast.
func (r *Room) Move(id model.PlayerID, pos physics.Vector2D, rotation float64) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.deps.Clock.Now()
	p, err := r.players.Move(id, pos, rotation, now)
	if err != nil {
		return model.Player{}, err
	}
	r.lastActivity = now
	return p, nil
}

// Shoot fires a projectile for the player from origin
func (r *Room) Shoot(id model.PlayerID, origin physics.Vector2D, angle float64) (model.Projectile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players.Get(id); !ok {
		return model.Projectile{}, model.ErrPlayerNotFound
	}
	if r.status != model.RoomStatusPlaying {
		return model.Projectile{}, model.ErrGameNotInProgress
	}

	p := r.deps.Projectiles.Create(origin, angle, id)
	r.projectiles = append(r.projectiles, p)
	r.lastActivity = r.deps.Clock.Now()
	return p, nil
}

// setCreator must be called with the lock held
func (r *Room) setCreator(id model.PlayerID) {
	if err := r.players.SetCreator(id); err == nil {
		r.creatorID = id
	}
}

// promoteLocked hands the creator role to the earliest-joined player
// once the current creator is no longer seated. It returns the new
// creator, or nil when nothing changed.
func (r *Room) promoteLocked() *model.Player {
	if _, seated := r.players.Get(r.creatorID); seated {
		return nil
	}
	r.creatorID = ""
	next, ok := r.players.First()
	if !ok {
		return nil
	}
	r.setCreator(next.ID)
	next.IsCreator = true
	return &next
}

func (r *Room) participant(username string) *model.MatchParticipant {
	for _, p := range r.participants {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// spawn places a new player at a random point inside the map
func (r *Room) spawn(id model.PlayerID, username string) model.Player {
	cfg := r.deps.Config
	radius := int(cfg.PlayerRadius)
	return model.Player{
		ID:       id,
		Username: username,
		Position: physics.Vec(
			float64(random.Between(r.deps.Random, radius, int(cfg.MapWidth)-radius)),
			float64(random.Between(r.deps.Random, radius, int(cfg.MapHeight)-radius)),
		),
		Health: cfg.MaxHealth,
	}
}
