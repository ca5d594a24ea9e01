package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/protocol"
	"github.com/mcoot/arenagame-go/internal/services/directory"
)

// Publisher delivers outbound messages. Rooms map to named groups of
// connections.
type Publisher interface {
	Send(conn model.PlayerID, msg protocol.Message)
	// Broadcast sends to every connection in the room except the given
	// one. An empty except reaches the whole room.
	Broadcast(room model.RoomID, msg protocol.Message, except model.PlayerID)
	JoinGroup(room model.RoomID, conn model.PlayerID)
	LeaveGroup(room model.RoomID, conn model.PlayerID)
	CloseGroup(room model.RoomID)
}

// Handler turns client events into directory operations and the
// resulting broadcasts. It keeps no state of its own.
type Handler struct {
	dir    *directory.Directory
	pub    Publisher
	logger *slog.Logger
}

// NewHandler creates a session handler
func NewHandler(dir *directory.Directory, pub Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		dir:    dir,
		pub:    pub,
		logger: logger.With(slog.String("component", "session")),
	}
}

// HandleFrame decodes a raw client frame and handles it. Frames that do
// not decode are answered with an error event.
func (h *Handler) HandleFrame(ctx context.Context, conn model.PlayerID, codec protocol.Codec, frame []byte) {
	msg, err := protocol.Decode(codec, frame)
	if err != nil {
		h.reject(ctx, conn, err)
		return
	}
	h.Handle(ctx, conn, msg)
}

// Handle applies one validated event from conn
func (h *Handler) Handle(ctx context.Context, conn model.PlayerID, msg protocol.Inbound) {
	var err error
	switch m := msg.(type) {
	case *protocol.CreateRoom:
		err = h.createRoom(ctx, conn, m)
	case *protocol.JoinRoom:
		err = h.joinRoom(ctx, conn, m)
	case *protocol.StartGame:
		err = h.startGame(ctx, conn, m)
	case *protocol.UpdatePlayer:
		err = h.updatePlayer(ctx, conn, m)
	case *protocol.Shoot:
		err = h.shoot(ctx, conn, m)
	default:
		err = protocol.ErrUnknownEvent
	}
	if err != nil {
		h.reject(ctx, conn, err)
	}
}

// Disconnect removes conn from its room and tells the remaining players
func (h *Handler) Disconnect(ctx context.Context, conn model.PlayerID) {
	roomID, seated := h.dir.RoomOf(conn)
	dep, err := h.dir.Disconnect(ctx, conn)
	if seated {
		h.pub.LeaveGroup(roomID, conn)
	}
	if err != nil {
		return
	}

	h.announceDeparture(conn, dep)
}

func (h *Handler) createRoom(ctx context.Context, conn model.PlayerID, m *protocol.CreateRoom) error {
	previous, hadPrevious := h.dir.RoomOf(conn)
	r, err := h.dir.CreateRoom(ctx, conn, m.Username)
	if err != nil {
		return err
	}
	if hadPrevious {
		h.pub.LeaveGroup(previous, conn)
	}
	if r.Vacated != nil {
		h.announceDeparture(conn, r.Vacated)
	}

	h.pub.JoinGroup(r.ID(), conn)
	h.pub.Send(conn, &protocol.RoomCreated{
		RoomID:    string(r.ID()),
		PlayerID:  string(conn),
		IsCreator: true,
	})
	return nil
}

func (h *Handler) joinRoom(ctx context.Context, conn model.PlayerID, m *protocol.JoinRoom) error {
	id := model.RoomID(m.RoomID)
	previous, hadPrevious := h.dir.RoomOf(conn)
	res, err := h.dir.JoinRoom(ctx, conn, id, m.Username)
	if err != nil {
		return err
	}
	if hadPrevious && previous != id {
		h.pub.LeaveGroup(previous, conn)
	}
	if res.Vacated != nil {
		h.announceDeparture(conn, res.Vacated)
	}

	players := protocol.PlayerStates(res.Players)
	h.pub.JoinGroup(id, conn)
	h.pub.Send(conn, &protocol.RoomJoined{
		RoomID:    string(id),
		PlayerID:  string(conn),
		Players:   players,
		IsCreator: res.Player.IsCreator,
	})
	h.pub.Broadcast(id, &protocol.PlayerJoined{Player: protocol.NewPlayerState(res.Player)}, conn)
	if res.CreatorChanged {
		h.pub.Broadcast(id, &protocol.CreatorChanged{
			NewCreatorID: string(res.CreatorID),
			Players:      players,
		}, "")
	}
	return nil
}

func (h *Handler) startGame(ctx context.Context, conn model.PlayerID, m *protocol.StartGame) error {
	id := model.RoomID(m.RoomID)
	if _, err := h.dir.StartGame(ctx, conn, id); err != nil {
		return err
	}
	h.pub.Broadcast(id, &protocol.GameStarted{RoomID: string(id)}, "")
	return nil
}

func (h *Handler) updatePlayer(ctx context.Context, conn model.PlayerID, m *protocol.UpdatePlayer) error {
	id := model.RoomID(m.RoomID)
	p, err := h.dir.UpdatePlayer(ctx, conn, id, m.Position, m.Rotation)
	if err != nil {
		return err
	}
	h.pub.Broadcast(id, protocol.Moved(p), conn)
	return nil
}

func (h *Handler) shoot(ctx context.Context, conn model.PlayerID, m *protocol.Shoot) error {
	id := model.RoomID(m.RoomID)
	p, err := h.dir.Shoot(ctx, conn, id, m.Position, m.Angle)
	if err != nil {
		return err
	}
	h.pub.Broadcast(id, &protocol.ProjectileCreated{Projectile: protocol.NewProjectileState(p)}, "")
	return nil
}

// announceDeparture tells a room that conn gave up its seat, and who
// holds the creator role if it moved
func (h *Handler) announceDeparture(conn model.PlayerID, dep *directory.Departure) {
	h.pub.Broadcast(dep.RoomID, &protocol.PlayerLeft{PlayerID: string(conn)}, "")
	if dep.Leave.NewCreator != nil {
		h.pub.Broadcast(dep.RoomID, &protocol.CreatorChanged{
			NewCreatorID: string(dep.Leave.NewCreator.ID),
			Players:      protocol.PlayerStates(dep.Leave.Players),
		}, "")
	}
}

// reject reports err to the sender. Rate-limited updates are dropped
// without a reply.
func (h *Handler) reject(ctx context.Context, conn model.PlayerID, err error) {
	if errors.Is(err, model.ErrRateLimited) {
		return
	}
	h.logger.DebugContext(ctx, "request rejected",
		slog.String("conn", string(conn)),
		slog.String("error", err.Error()),
	)
	h.pub.Send(conn, &protocol.Error{Message: err.Error()})
}
