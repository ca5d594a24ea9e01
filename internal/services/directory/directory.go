package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/arenagame-go/internal/dependencies/clock"
	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
	"github.com/mcoot/arenagame-go/internal/dependencies/random"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
	"github.com/mcoot/arenagame-go/internal/services/projectile"
	"github.com/mcoot/arenagame-go/internal/services/room"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet avoids characters that are easy to misread
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 32
)

// Config holds the directory's lifecycle timings
type Config struct {
	ReapInterval   time.Duration `mapstructure:"reap_interval"`
	RoomExpiry     time.Duration `mapstructure:"room_expiry"`
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace"`
}

// DefaultConfig returns the standard timings
func DefaultConfig() Config {
	return Config{
		ReapInterval:   5 * time.Minute,
		RoomExpiry:     2 * time.Minute,
		ReconnectGrace: 10 * time.Second,
	}
}

// Directory owns every room in the process, the connection to room
// index and the recently-disconnected records. Lock order is directory
// then room.
type Directory struct {
	mu           sync.RWMutex
	rooms        map[model.RoomID]*room.Room
	conns        map[model.PlayerID]model.RoomID
	disconnected map[string]model.DisconnectRecord

	cfg    Config
	deps   room.Deps
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// Departure describes a connection leaving its room
type Departure struct {
	RoomID model.RoomID
	Leave  *room.LeaveResult
}

// Created is the result of CreateRoom
type Created struct {
	*room.Room
	// Vacated is set when conn gave up a seat in a finished room
	Vacated *Departure
}

// Joined is the result of JoinRoom
type Joined struct {
	*room.JoinResult
	// Vacated is set when conn gave up a seat in a finished room
	Vacated *Departure
}

// New creates an empty directory
func New(
	cfg Config,
	game model.GameConfig,
	clock clock.Clock,
	random random.Random,
	ids idgen.Generator,
	logger *slog.Logger,
) *Directory {
	return &Directory{
		rooms:        make(map[model.RoomID]*room.Room),
		conns:        make(map[model.PlayerID]model.RoomID),
		disconnected: make(map[string]model.DisconnectRecord),
		cfg:          cfg,
		deps: room.Deps{
			Config:      game,
			Grace:       cfg.ReconnectGrace,
			Projectiles: projectile.New(ids, game),
			Clock:       clock,
			Random:      random,
			IDs:         ids,
		},
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("component", "directory")),
	}
}

// Config returns the directory timings
func (d *Directory) Config() Config {
	return d.cfg
}

// CreateRoom creates a waiting room with conn seated as its creator
func (d *Directory) CreateRoom(ctx context.Context, conn model.PlayerID, username string) (*Created, error) {
	username = strings.TrimSpace(username)

	d.mu.Lock()
	defer d.mu.Unlock()

	seated, vacated := d.seatedLocked(conn)
	if seated {
		return nil, model.ErrAlreadyInRoom
	}
	for _, r := range d.rooms {
		if r.OwnedBy(username) {
			return nil, model.ErrUsernameOwnsRoom
		}
	}

	code, err := d.newCodeLocked()
	if err != nil {
		return nil, err
	}

	r := room.New(code, conn, username, d.deps)
	d.rooms[code] = r
	d.conns[conn] = code
	delete(d.disconnected, username)

	d.logger.InfoContext(ctx, "room created",
		slog.String("room_id", string(code)),
		slog.String("username", username),
	)
	return &Created{Room: r, Vacated: vacated}, nil
}

// JoinRoom seats conn in an existing room. A join by a username with a
// disconnect record for the same room inside the grace window is a
// reconnection.
func (d *Directory) JoinRoom(ctx context.Context, conn model.PlayerID, id model.RoomID, username string) (*Joined, error) {
	username = strings.TrimSpace(username)

	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	seated, vacated := d.seatedLocked(conn)
	if seated {
		return nil, model.ErrAlreadyInRoom
	}

	var rec *model.DisconnectRecord
	if found, ok := d.disconnected[username]; ok && found.RoomID == id &&
		found.WithinGrace(d.clock.Now(), d.cfg.ReconnectGrace) {
		rec = &found
	}

	res, err := r.Join(conn, username, rec)
	if err != nil {
		return nil, err
	}
	d.conns[conn] = id
	if rec != nil {
		delete(d.disconnected, username)
	}

	d.logger.InfoContext(ctx, "player joined",
		slog.String("room_id", string(id)),
		slog.String("username", username),
		slog.Bool("reconnected", res.Reconnected),
	)
	return &Joined{JoinResult: res, Vacated: vacated}, nil
}

// StartGame starts the room on behalf of conn
func (d *Directory) StartGame(ctx context.Context, conn model.PlayerID, id model.RoomID) ([]model.Player, error) {
	r, err := d.Room(id)
	if err != nil {
		return nil, err
	}
	players, err := r.Start(conn)
	if err != nil {
		return nil, err
	}
	d.logger.InfoContext(ctx, "game started",
		slog.String("room_id", string(id)),
		slog.Int("players", len(players)),
	)
	return players, nil
}

// UpdatePlayer applies a movement report from conn
func (d *Directory) UpdatePlayer(ctx context.Context, conn model.PlayerID, id model.RoomID, pos physics.Vector2D, rotation float64) (model.Player, error) {
	r, err := d.Room(id)
	if err != nil {
		return model.Player{}, err
	}
	return r.Move(conn, pos, rotation)
}

// Shoot fires a projectile for conn
func (d *Directory) Shoot(ctx context.Context, conn model.PlayerID, id model.RoomID, origin physics.Vector2D, angle float64) (model.Projectile, error) {
	r, err := d.Room(id)
	if err != nil {
		return model.Projectile{}, err
	}
	return r.Shoot(conn, origin, angle)
}

// Disconnect removes conn from its room and remembers it so the same
// username can reconnect within the grace window. Connections whose
// player already died leave no record.
func (d *Directory) Disconnect(ctx context.Context, conn model.PlayerID) (*Departure, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.conns[conn]
	if !ok {
		return nil, model.ErrNotInRoom
	}
	delete(d.conns, conn)

	r, ok := d.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	res, err := r.Leave(conn)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrNotInRoom
		}
		return nil, err
	}

	if r.Status() != model.RoomStatusFinished {
		d.disconnected[res.Player.Username] = model.DisconnectRecord{
			Username:       res.Player.Username,
			RoomID:         id,
			WasCreator:     res.WasCreator,
			Health:         res.Player.Health,
			DisconnectedAt: d.clock.Now(),
		}
	}

	d.logger.InfoContext(ctx, "player disconnected",
		slog.String("room_id", string(id)),
		slog.String("username", res.Player.Username),
		slog.Bool("was_creator", res.WasCreator),
	)
	return &Departure{RoomID: id, Leave: res}, nil
}

// Reap deletes empty rooms idle for longer than the room expiry and
// purges disconnect records past the grace window. It returns the ids
// of the deleted rooms.
func (d *Directory) Reap(ctx context.Context) []model.RoomID {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	var removed []model.RoomID
	for id, r := range d.rooms {
		if r.PlayerCount() > 0 {
			continue
		}
		if now.Sub(r.LastActivity()) > d.cfg.RoomExpiry {
			delete(d.rooms, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		for conn, id := range d.conns {
			if slices.Contains(removed, id) {
				delete(d.conns, conn)
			}
		}
	}

	purged := 0
	for username, rec := range d.disconnected {
		_, roomExists := d.rooms[rec.RoomID]
		if !roomExists || !rec.WithinGrace(now, d.cfg.ReconnectGrace) {
			delete(d.disconnected, username)
			purged++
		}
	}

	slices.Sort(removed)
	if len(removed) > 0 || purged > 0 {
		d.logger.InfoContext(ctx, "reaped rooms",
			slog.Int("rooms", len(removed)),
			slog.Int("records", purged),
		)
	}
	return removed
}

// Room returns the room with the given id
func (d *Directory) Room(id model.RoomID) (*room.Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// RoomOf returns the room conn is currently seated in
func (d *Directory) RoomOf(conn model.PlayerID) (model.RoomID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.conns[conn]
	return id, ok
}

// Rooms returns a summary of every room, oldest first
func (d *Directory) Rooms() []model.RoomSummary {
	d.mu.RLock()
	summaries := make([]model.RoomSummary, 0, len(d.rooms))
	for _, r := range d.rooms {
		summaries = append(summaries, r.Summary())
	}
	d.mu.RUnlock()

	slices.SortFunc(summaries, func(a, b model.RoomSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return summaries
}

// PlayingRooms returns the rooms currently being simulated
func (d *Directory) PlayingRooms() []*room.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	playing := make([]*room.Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		if r.Status() == model.RoomStatusPlaying {
			playing = append(playing, r)
		}
	}
	return playing
}

// DisconnectRecord returns the pending record for username, if any
func (d *Directory) DisconnectRecord(username string) (model.DisconnectRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.disconnected[username]
	return rec, ok
}

// seatedLocked reports whether conn holds a live seat. A dead player or
// a player in a finished room is free to move on; leaving a finished
// room's seat is returned as a departure for the caller to announce.
func (d *Directory) seatedLocked(conn model.PlayerID) (bool, *Departure) {
	id, ok := d.conns[conn]
	if !ok {
		return false, nil
	}
	r, ok := d.rooms[id]
	if !ok || !r.HasPlayer(conn) {
		delete(d.conns, conn)
		return false, nil
	}
	if r.Status() != model.RoomStatusFinished {
		return true, nil
	}
	delete(d.conns, conn)
	res, err := r.Leave(conn)
	if err != nil {
		return false, nil
	}
	return false, &Departure{RoomID: id, Leave: res}
}

func (d *Directory) newCodeLocked() (model.RoomID, error) {
	for range maxCodeAttempts {
		code := model.RoomID(d.random.String(RoomCodeLength, RoomCodeAlphabet))
		if code == "" {
			continue
		}
		if _, exists := d.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate room code: no free code after %d attempts", maxCodeAttempts)
}
