// Package scheduler drives every playing room at a fixed tick rate and
// runs the directory reaper on its own slower interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/arenagame-go/internal/dependencies/clock"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/protocol"
	"github.com/mcoot/arenagame-go/internal/services/directory"
	"github.com/mcoot/arenagame-go/internal/services/room"
)

// Simulated is a room the scheduler can step
type Simulated interface {
	ID() model.RoomID
	Step() room.TickResult
}

// RoomSource lists the rooms to step on a tick
type RoomSource func() []Simulated

// FromDirectory steps the directory's playing rooms
func FromDirectory(d *directory.Directory) RoomSource {
	return func() []Simulated {
		rooms := d.PlayingRooms()
		out := make([]Simulated, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, r)
		}
		return out
	}
}

// Reaper removes expired rooms and returns their ids
type Reaper interface {
	Reap(ctx context.Context) []model.RoomID
}

// Broadcaster is the part of the transport the scheduler needs
type Broadcaster interface {
	Broadcast(room model.RoomID, msg protocol.Message, except model.PlayerID)
	CloseGroup(room model.RoomID)
}

// MatchRecorder receives every finished match
type MatchRecorder interface {
	Record(match model.MatchResult)
}

// Config holds the loop intervals
type Config struct {
	TickInterval time.Duration
	ReapInterval time.Duration
}

// Scheduler runs the simulation and reaper loops
type Scheduler struct {
	rooms    RoomSource
	reaper   Reaper
	pub      Broadcaster
	recorder MatchRecorder
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// New creates a scheduler. recorder may be nil.
func New(
	cfg Config,
	rooms RoomSource,
	reaper Reaper,
	pub Broadcaster,
	recorder MatchRecorder,
	clock clock.Clock,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		rooms:    rooms,
		reaper:   reaper,
		pub:      pub,
		recorder: recorder,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// Run blocks running both loops until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Go(func() { s.runTicks(ctx) })
	wg.Go(func() { s.runReaper(ctx) })
	wg.Wait()
}

func (s *Scheduler) runTicks(ctx context.Context) {
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) runReaper(ctx context.Context) {
	ticker := s.clock.NewTicker(s.cfg.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.Reap(ctx)
		}
	}
}

// Tick steps every playing room once and publishes what happened. A
// room that panics is logged and skipped.
func (s *Scheduler) Tick(ctx context.Context) {
	for _, r := range s.rooms() {
		res, err := s.step(r)
		if err != nil {
			s.logger.ErrorContext(ctx, "room step failed",
				slog.String("room_id", string(r.ID())),
				slog.String("error", err.Error()),
			)
			continue
		}
		if res.Simulated {
			s.publish(ctx, res)
		}
	}
}

// Reap runs one reaper pass and closes the groups of deleted rooms
func (s *Scheduler) Reap(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "reaper panicked", slog.Any("panic", rec))
		}
	}()
	for _, id := range s.reaper.Reap(ctx) {
		s.pub.CloseGroup(id)
	}
}

func (s *Scheduler) step(r Simulated) (res room.TickResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.Step(), nil
}

func (s *Scheduler) publish(ctx context.Context, res room.TickResult) {
	id := res.RoomID
	if res.Changed {
		s.pub.Broadcast(id, &protocol.ProjectilesUpdate{
			Projectiles: protocol.ProjectileStates(res.Projectiles),
		}, "")
	}
	for _, hit := range res.Hits {
		s.pub.Broadcast(id, &protocol.ProjectileHit{
			ProjectileID: string(hit.ProjectileID),
			PlayerID:     string(hit.PlayerID),
			Damage:       hit.Damage,
		}, "")
		s.pub.Broadcast(id, protocol.HealthChanged(hit.PlayerID, hit.Health), "")
	}
	for _, wall := range res.WallHits {
		s.pub.Broadcast(id, &protocol.ProjectileHit{ProjectileID: string(wall)}, "")
	}
	for _, death := range res.Deaths {
		s.pub.Broadcast(id, &protocol.PlayerDied{
			PlayerID:       string(death.PlayerID),
			KillerUsername: death.KillerUsername,
		}, "")
	}
	if res.NewCreator != nil {
		s.pub.Broadcast(id, &protocol.CreatorChanged{
			NewCreatorID: string(res.NewCreator.ID),
			Players:      protocol.PlayerStates(res.Players),
		}, "")
	}

	if res.GameOver == nil {
		return
	}
	s.pub.Broadcast(id, &protocol.GameOver{
		WinnerUsername: res.GameOver.WinnerUsername,
		WinnerID:       string(res.GameOver.WinnerID),
	}, "")
	s.logger.InfoContext(ctx, "game over",
		slog.String("room_id", string(id)),
		slog.String("winner", res.GameOver.WinnerUsername),
		slog.Duration("duration", res.GameOver.Match.Duration()),
	)
	if s.recorder != nil {
		s.recorder.Record(res.GameOver.Match)
	}
}
