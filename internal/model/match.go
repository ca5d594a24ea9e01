package model

import "time"

// MatchID identifies a recorded match
type MatchID string

// MatchParticipant is one player's line in a match result
type MatchParticipant struct {
	PlayerID  PlayerID `json:"player_id"`
	Username  string   `json:"username"`
	Kills     int      `json:"kills"`
	Died      bool     `json:"died"`
	Forfeited bool     `json:"forfeited"` // disconnected and did not return within the grace window
}

// MatchResult is written once when a room reaches finished
type MatchResult struct {
	ID             MatchID            `json:"id"`
	RoomID         RoomID             `json:"room_id"`
	WinnerID       PlayerID           `json:"winner_id,omitempty"` // empty on a draw
	WinnerUsername string             `json:"winner_username,omitempty"`
	Participants   []MatchParticipant `json:"participants"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
}

// IsDraw reports whether nobody survived
func (m *MatchResult) IsDraw() bool {
	return m.WinnerID == ""
}

// Duration returns how long the match ran
func (m *MatchResult) Duration() time.Duration {
	return m.FinishedAt.Sub(m.StartedAt)
}

// PlayerStats is the running tally for a username across matches
type PlayerStats struct {
	Username      string `json:"username"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
}

// Add accumulates delta into s
func (s *PlayerStats) Add(delta PlayerStats) {
	s.MatchesPlayed += delta.MatchesPlayed
	s.Wins += delta.Wins
	s.Kills += delta.Kills
	s.Deaths += delta.Deaths
}

// StatsDeltas returns the per-username increments a match contributes
func (m *MatchResult) StatsDeltas() []PlayerStats {
	deltas := make([]PlayerStats, 0, len(m.Participants))
	for _, p := range m.Participants {
		d := PlayerStats{
			Username:      p.Username,
			MatchesPlayed: 1,
			Kills:         p.Kills,
		}
		if p.Died {
			d.Deaths = 1
		}
		if m.WinnerUsername != "" && p.Username == m.WinnerUsername {
			d.Wins = 1
		}
		deltas = append(deltas, d)
	}
	return deltas
}
