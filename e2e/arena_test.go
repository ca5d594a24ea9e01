package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arenagame-go/internal/api"
	"github.com/mcoot/arenagame-go/internal/config"
	"github.com/mcoot/arenagame-go/internal/factory"
	"github.com/mcoot/arenagame-go/internal/physics"
	"github.com/mcoot/arenagame-go/internal/protocol"
	"github.com/mcoot/arenagame-go/internal/testutil"
)

const waitTimeout = 5 * time.Second

// startServer runs the full application on a random local port with
// the real clock driving the tick loop
func startServer(t *testing.T) string {
	t.Helper()

	cfg := config.Default()
	app, err := factory.New(cfg, testutil.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := api.NewServer(app.Router, cfg.Server, testutil.NopLogger())
	go func() { _ = server.Serve(ln) }()

	t.Cleanup(func() {
		cancel()
		_ = app.Stop()
		_ = server.Shutdown(context.Background())
	})

	return ln.Addr().String()
}

type gameClient struct {
	t     *testing.T
	conn  *websocket.Conn
	codec protocol.Codec
}

func dial(t *testing.T, addr, encoding string) *gameClient {
	t.Helper()
	codec, err := protocol.CodecFor(encoding)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?encoding="+encoding, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &gameClient{t: t, conn: conn, codec: codec}
}

func (c *gameClient) send(msg protocol.Message) {
	c.t.Helper()
	frame, err := protocol.Encode(c.codec, msg)
	require.NoError(c.t, err)
	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}
	require.NoError(c.t, c.conn.WriteMessage(frameType, frame))
}

// await reads frames until one with the given event arrives
func (c *gameClient) await(event string) protocol.Message {
	c.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	require.NoError(c.t, c.conn.SetReadDeadline(deadline))
	for {
		_, frame, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", event)
		msg, err := protocol.DecodeServer(c.codec, frame)
		require.NoError(c.t, err)
		if msg.Event() == event {
			return msg
		}
	}
}

func getJSON(t *testing.T, addr, path string, v any) int {
	t.Helper()
	resp, err := http.Get("http://" + addr + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestFullMatchOverWebSocket(t *testing.T) {
	addr := startServer(t)

	alice := dial(t, addr, protocol.EncodingJSON)
	bob := dial(t, addr, protocol.EncodingMsgpack)

	// Room setup
	alice.send(&protocol.CreateRoom{Username: "alice"})
	created := alice.await(protocol.EventRoomCreated).(*protocol.RoomCreated)
	assert.True(t, created.IsCreator)
	require.Len(t, created.RoomID, 6)

	bob.send(&protocol.JoinRoom{RoomID: created.RoomID, Username: "bob"})
	joined := bob.await(protocol.EventRoomJoined).(*protocol.RoomJoined)
	assert.False(t, joined.IsCreator)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "alice", joined.Players[0].Username)

	announced := alice.await(protocol.EventPlayerJoined).(*protocol.PlayerJoined)
	assert.Equal(t, "bob", announced.Player.Username)

	var room struct {
		Status  string `json:"status"`
		Players []any  `json:"players"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, addr, "/api/v1/rooms/"+created.RoomID, &room))
	assert.Equal(t, "waiting", room.Status)
	assert.Len(t, room.Players, 2)

	// Only the creator may start
	bob.send(&protocol.StartGame{RoomID: created.RoomID})
	rejected := bob.await(protocol.EventError).(*protocol.Error)
	assert.Contains(t, rejected.Message, "creator")

	alice.send(&protocol.StartGame{RoomID: created.RoomID})
	alice.await(protocol.EventGameStarted)
	bob.await(protocol.EventGameStarted)

	// Line up and fire
	alice.send(&protocol.UpdatePlayer{RoomID: created.RoomID, Position: physics.Vec(100, 300)})
	bob.send(&protocol.UpdatePlayer{RoomID: created.RoomID, Position: physics.Vec(400, 300)})
	moved := alice.await(protocol.EventPlayerUpdated).(*protocol.PlayerUpdated)
	require.NotNil(t, moved.Position)
	assert.Equal(t, physics.Vec(400, 300), *moved.Position)

	for range 5 {
		alice.send(&protocol.Shoot{RoomID: created.RoomID, Position: physics.Vec(130, 300), Angle: 0})
	}

	died := bob.await(protocol.EventPlayerDied).(*protocol.PlayerDied)
	assert.Equal(t, "alice", died.KillerUsername)
	over := alice.await(protocol.EventGameOver).(*protocol.GameOver)
	assert.Equal(t, "alice", over.WinnerUsername)
	assert.Equal(t, created.PlayerID, over.WinnerID)

	// History becomes visible once the recorder has written it
	var matches struct {
		Matches []struct {
			RoomID         string `json:"room_id"`
			WinnerUsername string `json:"winner_username"`
		} `json:"matches"`
	}
	require.Eventually(t, func() bool {
		return getJSON(t, addr, "/api/v1/matches", &matches) == http.StatusOK && len(matches.Matches) == 1
	}, waitTimeout, 20*time.Millisecond)
	assert.Equal(t, created.RoomID, matches.Matches[0].RoomID)
	assert.Equal(t, "alice", matches.Matches[0].WinnerUsername)

	var stats struct {
		Wins   int `json:"wins"`
		Deaths int `json:"deaths"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, addr, "/api/v1/players/bob/stats", &stats))
	assert.Equal(t, 0, stats.Wins)
	assert.Equal(t, 1, stats.Deaths)
}

func TestMalformedFrameGetsError(t *testing.T) {
	addr := startServer(t)
	c := dial(t, addr, protocol.EncodingJSON)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"fly","data":{}}`)))
	msg := c.await(protocol.EventError).(*protocol.Error)
	assert.NotEmpty(t, msg.Message)

	// The connection stays usable
	c.send(&protocol.CreateRoom{Username: "  carol  "})
	c.await(protocol.EventRoomCreated)
}

func TestCreatorMigratesOnDisconnect(t *testing.T) {
	addr := startServer(t)

	alice := dial(t, addr, protocol.EncodingJSON)
	bob := dial(t, addr, protocol.EncodingJSON)

	alice.send(&protocol.CreateRoom{Username: "alice"})
	created := alice.await(protocol.EventRoomCreated).(*protocol.RoomCreated)
	bob.send(&protocol.JoinRoom{RoomID: created.RoomID, Username: "bob"})
	joined := bob.await(protocol.EventRoomJoined).(*protocol.RoomJoined)

	require.NoError(t, alice.conn.Close())

	left := bob.await(protocol.EventPlayerLeft).(*protocol.PlayerLeft)
	assert.Equal(t, created.PlayerID, left.PlayerID)
	changed := bob.await(protocol.EventCreatorChanged).(*protocol.CreatorChanged)
	assert.Equal(t, joined.PlayerID, changed.NewCreatorID)

	// Alice comes back within the grace window and is creator again
	again := dial(t, addr, protocol.EncodingJSON)
	again.send(&protocol.JoinRoom{RoomID: created.RoomID, Username: "alice"})
	rejoined := again.await(protocol.EventRoomJoined).(*protocol.RoomJoined)
	assert.True(t, rejoined.IsCreator)
}

func TestUnknownEncodingIsRejected(t *testing.T) {
	addr := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?encoding=xml", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
