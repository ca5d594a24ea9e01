package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/arenagame-go/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// GameEvent is one server event as printed by the play command
type GameEvent struct {
	Time  time.Time        `json:"time"`
	Event string           `json:"event"`
	Data  protocol.Message `json:"data"`
}

// PrintEvent outputs a server event. JSON output is one object per line.
func (o *Output) PrintEvent(at time.Time, msg protocol.Message) {
	if o.format == "json" {
		data, _ := json.Marshal(GameEvent{Time: at, Event: msg.Event(), Data: msg})
		fmt.Fprintln(o.w, string(data))
		return
	}
	data, _ := json.Marshal(msg)
	display := string(data)
	if len(display) > 120 {
		display = display[:120] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", at.Format("15:04:05.000"), msg.Event(), display)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case MatchList:
		o.printMatchList(v)
	case Match:
		o.printMatch(v)
	case Stats:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// Position response type
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RoomPlayer response type
type RoomPlayer struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Position  Position `json:"position"`
	Rotation  float64  `json:"rotation"`
	Health    int      `json:"health"`
	IsCreator bool     `json:"is_creator"`
}

// Room response type
type Room struct {
	ID              string       `json:"id"`
	Status          string       `json:"status"`
	CreatorID       string       `json:"creator_id,omitempty"`
	Players         []RoomPlayer `json:"players"`
	ProjectileCount int          `json:"projectile_count"`
	CreatedAt       time.Time    `json:"created_at"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	LastActivityAt  time.Time    `json:"last_activity_at"`
}

// RoomListItem response type
type RoomListItem struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomListItem `json:"rooms"`
}

// Participant response type
type Participant struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	Kills     int    `json:"kills"`
	Died      bool   `json:"died"`
	Forfeited bool   `json:"forfeited"`
}

// Match response type
type Match struct {
	ID             string        `json:"id"`
	RoomID         string        `json:"room_id"`
	WinnerID       string        `json:"winner_id,omitempty"`
	WinnerUsername string        `json:"winner_username,omitempty"`
	Participants   []Participant `json:"participants"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// MatchList response type
type MatchList struct {
	Matches []Match `json:"matches"`
}

// Stats response type
type Stats struct {
	Username      string `json:"username"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Rooms: %d\n", h.Rooms)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%s  %-8s  %d player(s)  created %s\n",
			r.ID, r.Status, r.PlayerCount, r.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.ID)
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	if r.StartedAt != nil {
		fmt.Fprintf(o.w, "Started: %s\n", r.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(o.w, "Projectiles: %d\n", r.ProjectileCount)
	fmt.Fprintf(o.w, "Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		creator := ""
		if p.IsCreator {
			creator = " [creator]"
		}
		fmt.Fprintf(o.w, "  - %s (%s) hp=%d at (%.0f, %.0f)%s\n",
			p.Username, p.ID, p.Health, p.Position.X, p.Position.Y, creator)
	}
}

func (o *Output) printMatchList(l MatchList) {
	if len(l.Matches) == 0 {
		fmt.Fprintln(o.w, "No matches")
		return
	}
	for _, m := range l.Matches {
		fmt.Fprintf(o.w, "%s  room %s  %s  %s\n",
			m.ID, m.RoomID, winnerText(m), m.FinishedAt.Format(time.RFC3339))
	}
}

func (o *Output) printMatch(m Match) {
	fmt.Fprintf(o.w, "Match: %s\n", m.ID)
	fmt.Fprintf(o.w, "Room: %s\n", m.RoomID)
	fmt.Fprintf(o.w, "Result: %s\n", winnerText(m))
	fmt.Fprintf(o.w, "Duration: %s\n", m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	fmt.Fprintln(o.w, "Participants:")
	for _, p := range m.Participants {
		var notes []string
		if p.Died {
			notes = append(notes, "died")
		}
		if p.Forfeited {
			notes = append(notes, "forfeited")
		}
		suffix := ""
		if len(notes) > 0 {
			suffix = " (" + strings.Join(notes, ", ") + ")"
		}
		fmt.Fprintf(o.w, "  - %s: %d kill(s)%s\n", p.Username, p.Kills, suffix)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Fprintf(o.w, "Player: %s\n", s.Username)
	fmt.Fprintf(o.w, "Matches: %d\n", s.MatchesPlayed)
	fmt.Fprintf(o.w, "Wins: %d\n", s.Wins)
	fmt.Fprintf(o.w, "Kills: %d\n", s.Kills)
	fmt.Fprintf(o.w, "Deaths: %d\n", s.Deaths)
}

func winnerText(m Match) string {
	if m.WinnerUsername == "" {
		return "draw"
	}
	return "won by " + m.WinnerUsername
}
