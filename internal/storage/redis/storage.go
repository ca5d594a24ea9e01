package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.MatchResult) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, matchKey(match.ID), data, s.cfg.MatchTTL)
	pipe.ZAdd(ctx, matchIndexKey(), redis.Z{
		Score:  float64(match.FinishedAt.UnixMilli()),
		Member: string(match.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.MatchResult, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var match model.MatchResult
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) ListMatches(ctx context.Context, limit int) ([]*model.MatchResult, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	ids, err := s.client.ZRevRange(ctx, matchIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.MatchResult{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = matchKey(model.MatchID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*model.MatchResult, 0, len(values))
	var expired []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Record expired, drop it from the index
			expired = append(expired, ids[i])
			continue
		}
		var match model.MatchResult
		if err := json.Unmarshal([]byte(str), &match); err != nil {
			return nil, fmt.Errorf("decode match %s: %w", ids[i], err)
		}
		matches = append(matches, &match)
	}
	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, matchIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// Stats operations

type statsHash struct {
	MatchesPlayed int `redis:"matches_played"`
	Wins          int `redis:"wins"`
	Kills         int `redis:"kills"`
	Deaths        int `redis:"deaths"`
}

func (s *Storage) UpdatePlayerStats(ctx context.Context, delta model.PlayerStats) error {
	key := statsKey(delta.Username)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "matches_played", int64(delta.MatchesPlayed))
	pipe.HIncrBy(ctx, key, "wins", int64(delta.Wins))
	pipe.HIncrBy(ctx, key, "kills", int64(delta.Kills))
	pipe.HIncrBy(ctx, key, "deaths", int64(delta.Deaths))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayerStats(ctx context.Context, username string) (*model.PlayerStats, error) {
	res := s.client.HGetAll(ctx, statsKey(username))
	fields, err := res.Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrStatsNotFound
	}

	var h statsHash
	if err := res.Scan(&h); err != nil {
		return nil, err
	}
	return &model.PlayerStats{
		Username:      username,
		MatchesPlayed: h.MatchesPlayed,
		Wins:          h.Wins,
		Kills:         h.Kills,
		Deaths:        h.Deaths,
	}, nil
}
