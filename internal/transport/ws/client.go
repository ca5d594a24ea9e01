package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/protocol"
)

// Client is one WebSocket connection
type Client struct {
	hub         *Hub
	id          model.PlayerID
	conn        *websocket.Conn
	codec       protocol.Codec
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
}

func newClient(hub *Hub, id model.PlayerID, conn *websocket.Conn, codec protocol.Codec) *Client {
	return &Client{
		hub:         hub,
		id:          id,
		conn:        conn,
		codec:       codec,
		send:        make(chan []byte, hub.cfg.SendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id, which doubles as the player id
func (c *Client) ID() model.PlayerID {
	return c.id
}

// enqueue never blocks. A client too slow to drain its buffer loses the
// message.
func (c *Client) enqueue(frame []byte) {
	select {
	case <-c.done:
	case c.send <- frame:
	default:
		c.hub.logger.Warn("message dropped - client buffer full",
			slog.String("conn", string(c.id)))
	}
}

// close asks the write pump to send a close frame and hang up
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump feeds frames to the handler until the connection drops, then
// reports the disconnect exactly once
func (c *Client) readPump(frames FrameHandler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.hub.unregister(c)
		frames.Disconnect(context.Background(), c.id)
		c.close()
		_ = c.conn.Close()
		c.hub.logger.Debug("read pump stopped",
			slog.String("conn", string(c.id)),
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error",
					slog.String("conn", string(c.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		frames.HandleFrame(ctx, c.id, c.codec, frame)
	}
}

func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(frameType, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
