package redis

import (
	"fmt"

	"github.com/mcoot/arenagame-go/internal/model"
)

// Key prefix for all arena data
const keyPrefix = "arena"

// matchKey returns the Redis key for a MatchResult
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// matchIndexKey returns the sorted set of match ids scored by finish time
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

// statsKey returns the Redis hash holding a username's totals
func statsKey(username string) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, username)
}
