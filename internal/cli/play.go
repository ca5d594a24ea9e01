package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/arenagame-go/internal/protocol"
)

// PlayOptions configures the play command
type PlayOptions struct {
	Username string
	RoomID   string // empty creates a new room
	// StartAt is the player count at which the creator starts the game;
	// zero never starts it
	StartAt    int
	StayOnOver bool
}

func newPlayCmd() *cobra.Command {
	var opts PlayOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Create or join a room and stream its events",
		Long: `Connect to the game WebSocket, create a room (or join one with --room)
and print every event the server sends.

With --start-at N the creator starts the game once N players are seated.
The command exits when the game ends unless --stay is given.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			return play(ctx, client, cfg.Encoding, opts, out)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username to play as")
	cmd.Flags().StringVarP(&opts.RoomID, "room", "r", "", "Room to join (default: create a new room)")
	cmd.Flags().IntVar(&opts.StartAt, "start-at", 0, "Start the game once this many players are seated")
	cmd.Flags().BoolVar(&opts.StayOnOver, "stay", false, "Keep streaming after the game ends")
	cmd.Flags().StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "Frame encoding: json, msgpack (env: ARENACTL_ENCODING)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// playSession follows the room as seen by one client and decides what
// to send in response to each event
type playSession struct {
	opts      PlayOptions
	roomID    string
	selfID    string
	isCreator bool
	players   int
	started   bool
}

// opening returns the first message to send
func (s *playSession) opening() protocol.Message {
	if s.opts.RoomID == "" {
		return &protocol.CreateRoom{Username: s.opts.Username}
	}
	return &protocol.JoinRoom{RoomID: s.opts.RoomID, Username: s.opts.Username}
}

// observe updates the session from msg. It returns a reply to send, if
// any, and whether the session is over.
func (s *playSession) observe(msg protocol.Message) (protocol.Message, bool) {
	switch m := msg.(type) {
	case *protocol.RoomCreated:
		s.roomID, s.selfID, s.isCreator, s.players = m.RoomID, m.PlayerID, m.IsCreator, 1
	case *protocol.RoomJoined:
		s.roomID, s.selfID, s.isCreator, s.players = m.RoomID, m.PlayerID, m.IsCreator, len(m.Players)
	case *protocol.PlayerJoined:
		s.players++
	case *protocol.PlayerLeft:
		s.players = max(0, s.players-1)
	case *protocol.CreatorChanged:
		s.isCreator = m.NewCreatorID == s.selfID
		s.players = len(m.Players)
	case *protocol.GameStarted:
		s.started = true
	case *protocol.GameOver:
		return nil, !s.opts.StayOnOver
	}

	if s.wantsStart() {
		s.started = true
		return &protocol.StartGame{RoomID: s.roomID}, false
	}
	return nil, false
}

func (s *playSession) wantsStart() bool {
	return s.opts.StartAt > 0 && !s.started && s.isCreator && s.roomID != "" && s.players >= s.opts.StartAt
}

func play(ctx context.Context, c *Client, encoding string, opts PlayOptions, out *Output) error {
	codec, err := protocol.CodecFor(encoding)
	if err != nil {
		return err
	}

	conn, err := c.Dial(ctx, codec.Name())
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	frameType := websocket.TextMessage
	if codec.Binary() {
		frameType = websocket.BinaryMessage
	}
	send := func(msg protocol.Message) error {
		frame, err := protocol.Encode(codec, msg)
		if err != nil {
			return err
		}
		return conn.WriteMessage(frameType, frame)
	}

	// Unblock ReadMessage on interrupt
	stopped := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stopped()

	session := &playSession{opts: opts}
	if err := send(session.opening()); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				out.PrintMessage("Disconnected")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.DecodeServer(codec, frame)
		if err != nil {
			out.PrintError(err)
			continue
		}
		out.PrintEvent(time.Now(), msg)

		// Without a room there is nothing left to stream
		if serverErr, ok := msg.(*protocol.Error); ok && session.roomID == "" {
			return fmt.Errorf("server rejected request: %s", serverErr.Message)
		}

		reply, done := session.observe(msg)
		if reply != nil {
			if err := send(reply); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
		if done {
			return nil
		}
	}
}
