package storage

import (
	"context"

	"github.com/mcoot/arenagame-go/internal/model"
)

// DefaultListLimit is used when a caller asks for a non-positive limit
const DefaultListLimit = 20

// Storage persists finished matches and per-username totals
type Storage interface {
	// Match operations
	SaveMatch(ctx context.Context, match *model.MatchResult) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.MatchResult, error)
	// ListMatches returns the most recently finished matches first
	ListMatches(ctx context.Context, limit int) ([]*model.MatchResult, error)

	// Stats operations
	UpdatePlayerStats(ctx context.Context, delta model.PlayerStats) error
	GetPlayerStats(ctx context.Context, username string) (*model.PlayerStats, error)
}
