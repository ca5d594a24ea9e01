package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	matches map[model.MatchID]*model.MatchResult
	order   []model.MatchID // by finish time, oldest first
	stats   map[string]*model.PlayerStats
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		matches: make(map[model.MatchID]*model.MatchResult),
		stats:   make(map[string]*model.PlayerStats),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneMatch(match)
	if _, exists := s.matches[match.ID]; !exists {
		s.order = append(s.order, match.ID)
	}
	s.matches[match.ID] = stored
	slices.SortStableFunc(s.order, func(a, b model.MatchID) int {
		return s.matches[a].FinishedAt.Compare(s.matches[b].FinishedAt)
	})
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return cloneMatch(match), nil
}

func (s *Storage) ListMatches(ctx context.Context, limit int) ([]*model.MatchResult, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]*model.MatchResult, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(matches) < limit; i-- {
		matches = append(matches, cloneMatch(s.matches[s.order[i]]))
	}
	return matches, nil
}

// Stats operations

func (s *Storage) UpdatePlayerStats(ctx context.Context, delta model.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[delta.Username]
	if !ok {
		stats = &model.PlayerStats{Username: delta.Username}
		s.stats[delta.Username] = stats
	}
	stats.Add(delta)
	return nil
}

func (s *Storage) GetPlayerStats(ctx context.Context, username string) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[username]
	if !ok {
		return nil, model.ErrStatsNotFound
	}
	out := *stats
	return &out, nil
}

func cloneMatch(m *model.MatchResult) *model.MatchResult {
	out := *m
	out.Participants = slices.Clone(m.Participants)
	return &out
}
