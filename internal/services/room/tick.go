package room

import (
	"time"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/services/projectile"
)

// Hit is damage dealt to a player by a projectile
type Hit struct {
	ProjectileID model.ProjectileID
	PlayerID     model.PlayerID
	Damage       int
	Health       int // after the hit
}

// Death records a player reaching zero health
type Death struct {
	PlayerID       model.PlayerID
	Username       string
	KillerID       model.PlayerID
	KillerUsername string
}

// GameOver is produced exactly once, on the step that finishes the room
type GameOver struct {
	WinnerID       model.PlayerID
	WinnerUsername string
	Match          model.MatchResult
}

// TickResult is everything one simulation step produced
type TickResult struct {
	RoomID      model.RoomID
	Simulated   bool // false when the room was not playing
	Projectiles []model.Projectile
	// Changed is true when the projectile set should be broadcast
	Changed  bool
	Hits     []Hit
	WallHits []model.ProjectileID
	Deaths   []Death
	// NewCreator is set when the creator died and the role moved on.
	// Players then holds the remaining players.
	NewCreator *model.Player
	Players    []model.Player
	GameOver   *GameOver
}

type pendingHit struct {
	projectile model.Projectile
	target     model.PlayerID
}

// Step advances the simulation by one tick: move every projectile,
// resolve each against the players as they were before the tick, apply
// all hits, then check whether the game is over.
func (r *Room) Step() TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := TickResult{RoomID: r.id}
	if r.status != model.RoomStatusPlaying {
		return result
	}
	result.Simulated = true
	now := r.deps.Clock.Now()

	snapshot := r.players.Players()
	usernames := make(map[model.PlayerID]string, len(snapshot))
	for _, p := range snapshot {
		usernames[p.ID] = p.Username
	}
	hadProjectiles := len(r.projectiles) > 0

	dt := r.deps.Config.TickSeconds()
	survivors := make([]model.Projectile, 0, len(r.projectiles))
	var hits []pendingHit
	for _, p := range r.projectiles {
		p = projectile.Advance(p, dt)
		res := r.deps.Projectiles.Resolve(p, snapshot)
		switch res.Outcome {
		case projectile.PlayerHit:
			hits = append(hits, pendingHit{projectile: p, target: res.Target})
		case projectile.WallHit:
			result.WallHits = append(result.WallHits, p.ID)
		default:
			survivors = append(survivors, p)
		}
	}
	r.projectiles = survivors

	for _, h := range hits {
		health, killed, err := r.players.ApplyDamage(h.target, r.deps.Config.Damage)
		if err != nil {
			continue
		}
		result.Hits = append(result.Hits, Hit{
			ProjectileID: h.projectile.ID,
			PlayerID:     h.target,
			Damage:       r.deps.Config.Damage,
			Health:       health,
		})
		if !killed {
			continue
		}
		result.Deaths = append(result.Deaths, Death{
			PlayerID:       h.target,
			Username:       usernames[h.target],
			KillerID:       h.projectile.OwnerID,
			KillerUsername: usernames[h.projectile.OwnerID],
		})
		if part := r.participant(usernames[h.target]); part != nil {
			part.Died = true
		}
		if part := r.participant(usernames[h.projectile.OwnerID]); part != nil {
			part.Kills++
		}
	}
	for _, d := range result.Deaths {
		r.players.Remove(d.PlayerID)
	}
	if len(result.Deaths) > 0 {
		if next := r.promoteLocked(); next != nil {
			result.NewCreator = next
			result.Players = r.players.Players()
		}
	}
	if len(result.Hits) > 0 {
		r.lastActivity = now
	}

	result.Projectiles = append([]model.Projectile(nil), r.projectiles...)
	result.Changed = hadProjectiles || len(r.projectiles) > 0
	result.GameOver = r.checkGameOver(now, len(result.Deaths) > 0)
	return result
}

// checkGameOver finishes the room when at most one player is left.
// After deaths the game ends at once; when players have only
// disconnected it waits until nobody can still reconnect.
func (r *Room) checkGameOver(now time.Time, deathsThisTick bool) *GameOver {
	for username, at := range r.awaiting {
		if now.Sub(at) > r.deps.Grace {
			delete(r.awaiting, username)
		}
	}
	if r.players.Len() > 1 {
		return nil
	}
	if !deathsThisTick && len(r.awaiting) > 0 {
		return nil
	}

	r.status = model.RoomStatusFinished
	r.lastActivity = now
	r.projectiles = nil

	over := &GameOver{}
	if winner, ok := r.players.First(); ok {
		over.WinnerID = winner.ID
		over.WinnerUsername = winner.Username
	}
	over.Match = model.MatchResult{
		ID:             model.MatchID(r.deps.IDs.NewID()),
		RoomID:         r.id,
		WinnerID:       over.WinnerID,
		WinnerUsername: over.WinnerUsername,
		StartedAt:      r.startedAt,
		FinishedAt:     now,
	}
	for _, p := range r.participants {
		over.Match.Participants = append(over.Match.Participants, *p)
	}
	return over
}
