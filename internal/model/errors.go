package model

import "errors"

// Error taxonomy. Every domain error below wraps exactly one of these,
// so callers classify with errors.Is(err, ErrNotFound) and so on.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	// ErrRateLimited is never reported to clients
	ErrRateLimited = errors.New("rate limited")
)

var (
	// Not found
	ErrRoomNotFound   = newError(ErrNotFound, "room not found")
	ErrPlayerNotFound = newError(ErrNotFound, "player not found")
	ErrNotInRoom      = newError(ErrNotFound, "connection is not in a room")
	ErrMatchNotFound  = newError(ErrNotFound, "match not found")
	ErrStatsNotFound  = newError(ErrNotFound, "no stats recorded for player")

	// Invalid state
	ErrGameInProgress    = newError(ErrInvalidState, "game is already in progress")
	ErrGameNotInProgress = newError(ErrInvalidState, "game is not in progress")
	ErrGameFinished      = newError(ErrInvalidState, "game has finished")
	ErrNotEnoughPlayers  = newError(ErrInvalidState, "at least two players are needed to start")

	// Unauthorized
	ErrNotCreator = newError(ErrUnauthorized, "only the room creator can do that")

	// Conflict
	ErrUsernameOwnsRoom = newError(ErrConflict, "username already owns a room")
	ErrUsernameTaken    = newError(ErrConflict, "username is already taken in this room")
	ErrAlreadyInRoom    = newError(ErrConflict, "connection is already in a room")

	// Rate limited
	ErrUpdateTooSoon = newError(ErrRateLimited, "update arrived before the minimum interval")
)

type domainError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

// Kind returns the taxonomy sentinel err belongs to, or nil if err is
// not a domain error
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidState, ErrUnauthorized, ErrConflict, ErrRateLimited} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
