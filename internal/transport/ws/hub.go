// Package ws carries the game protocol over WebSocket connections. The
// Hub tracks every connection and the room groups they belong to.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/protocol"
)

// FrameHandler consumes what clients send
type FrameHandler interface {
	HandleFrame(ctx context.Context, conn model.PlayerID, codec protocol.Codec, frame []byte)
	Disconnect(ctx context.Context, conn model.PlayerID)
}

// Hub manages connected clients and room groups
type Hub struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	groups  map[model.RoomID]map[model.PlayerID]*Client

	cfg      Config
	ids      idgen.Generator
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates an empty hub
func NewHub(cfg Config, ids idgen.Generator, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		groups:  make(map[model.RoomID]map[model.PlayerID]*Client),
		cfg:     cfg,
		ids:     ids,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Handler returns the HTTP handler that upgrades requests and feeds
// their frames to frames
func (h *Hub) Handler(frames FrameHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.serveWS(w, r, frames)
	})
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request, frames FrameHandler) {
	encoding := r.URL.Query().Get("encoding")
	if encoding == "" {
		encoding = h.cfg.DefaultEncoding
	}
	codec, err := protocol.CodecFor(encoding)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h, model.PlayerID(h.ids.NewID()), conn, codec)
	h.register(client)

	go client.writePump()
	go client.readPump(frames)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected",
		slog.String("conn", string(c.id)),
		slog.String("encoding", c.codec.Name()),
		slog.Int("total_clients", total),
	)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.id] != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	for id, members := range h.groups {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.groups, id)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client disconnected",
		slog.String("conn", string(c.id)),
		slog.Int("total_clients", total),
	)
}

// Send delivers msg to one connection. Unknown connections are ignored.
func (h *Hub) Send(conn model.PlayerID, msg protocol.Message) {
	h.mu.RLock()
	c, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	frame, err := protocol.Encode(c.codec, msg)
	if err != nil {
		h.logger.Error("encode failed", slog.String("event", msg.Event()), slog.String("error", err.Error()))
		return
	}
	c.enqueue(frame)
}

// Broadcast delivers msg to every member of the room's group except
// the given connection. Each encoding is marshalled once.
func (h *Hub) Broadcast(room model.RoomID, msg protocol.Message, except model.PlayerID) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.groups[room]))
	for id, c := range h.groups[room] {
		if id != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	frames := make(map[string][]byte, 2)
	for _, c := range targets {
		frame, ok := frames[c.codec.Name()]
		if !ok {
			var err error
			frame, err = protocol.Encode(c.codec, msg)
			if err != nil {
				h.logger.Error("encode failed", slog.String("event", msg.Event()), slog.String("error", err.Error()))
				return
			}
			frames[c.codec.Name()] = frame
		}
		c.enqueue(frame)
	}
}

// JoinGroup adds a connection to a room's group
func (h *Hub) JoinGroup(room model.RoomID, conn model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	if h.groups[room] == nil {
		h.groups[room] = make(map[model.PlayerID]*Client)
	}
	h.groups[room][conn] = c
}

// LeaveGroup removes a connection from a room's group
func (h *Hub) LeaveGroup(room model.RoomID, conn model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

// CloseGroup forgets a room's group. Its connections stay open.
func (h *Hub) CloseGroup(room model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, room)
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of connections in a room's group
func (h *Hub) GroupSize(room model.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[room])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
	h.logger.Info("websocket hub stopped", slog.Int("disconnected_clients", len(clients)))
}
