// Package history persists finished matches and per-username totals off
// the simulation path.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/storage"
)

// DefaultQueueSize is the number of matches buffered before Record
// starts dropping
const DefaultQueueSize = 256

const writeTimeout = 5 * time.Second

// Recorder queues match results and writes them from a background
// worker so the tick loop never waits on storage
type Recorder struct {
	store  storage.Storage
	queue  chan model.MatchResult
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	logger *slog.Logger
}

// NewRecorder creates a recorder. Call Start to begin writing.
func NewRecorder(store storage.Storage, queueSize int, logger *slog.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Recorder{
		store:  store,
		queue:  make(chan model.MatchResult, queueSize),
		stop:   make(chan struct{}),
		logger: logger.With(slog.String("component", "history")),
	}
}

// Start launches the background writer
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.writer()
}

// Close stops the writer after flushing anything already queued
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}

// Record enqueues a finished match without blocking. When the queue is
// full the match is dropped.
func (r *Recorder) Record(match model.MatchResult) {
	select {
	case r.queue <- match:
	default:
		r.logger.Warn("history queue full, dropping match",
			slog.String("match_id", string(match.ID)),
			slog.String("room_id", string(match.RoomID)),
		)
	}
}

// GetMatch returns a recorded match
func (r *Recorder) GetMatch(ctx context.Context, id model.MatchID) (*model.MatchResult, error) {
	return r.store.GetMatch(ctx, id)
}

// ListMatches returns recent matches, newest first
func (r *Recorder) ListMatches(ctx context.Context, limit int) ([]*model.MatchResult, error) {
	return r.store.ListMatches(ctx, limit)
}

// PlayerStats returns the totals for username
func (r *Recorder) PlayerStats(ctx context.Context, username string) (*model.PlayerStats, error) {
	return r.store.GetPlayerStats(ctx, username)
}

func (r *Recorder) writer() {
	defer r.wg.Done()
	for {
		select {
		case match := <-r.queue:
			r.write(match)
		case <-r.stop:
			for {
				select {
				case match := <-r.queue:
					r.write(match)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(match model.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.persist(ctx, &match); err != nil {
		r.logger.Error("failed to record match",
			slog.String("match_id", string(match.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	r.logger.Debug("match recorded",
		slog.String("match_id", string(match.ID)),
		slog.Int("participants", len(match.Participants)),
	)
}

func (r *Recorder) persist(ctx context.Context, match *model.MatchResult) error {
	if err := r.store.SaveMatch(ctx, match); err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	var errs []error
	for _, delta := range match.StatsDeltas() {
		if err := r.store.UpdatePlayerStats(ctx, delta); err != nil {
			errs = append(errs, fmt.Errorf("update stats for %s: %w", delta.Username, err))
		}
	}
	return errors.Join(errs...)
}
