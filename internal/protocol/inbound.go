package protocol

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/arenagame-go/internal/physics"
)

// MaxUsernameLength is the longest username accepted, in characters
const MaxUsernameLength = 24

var (
	// ErrMalformed is returned for frames that cannot be decoded
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownEvent is returned for event names outside the protocol
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidField is returned when a payload fails validation
	ErrInvalidField = errors.New("invalid field")
)

// Inbound is a validated client request. The concrete types are
// *CreateRoom, *JoinRoom, *StartGame, *UpdatePlayer and *Shoot.
type Inbound interface {
	Message
	// Validate checks the payload and normalizes it in place
	Validate() error
}

// CreateRoom asks for a new room with the sender as creator
type CreateRoom struct {
	Username string `json:"username" msgpack:"username"`
}

func (*CreateRoom) Event() string { return EventCreateRoom }

func (m *CreateRoom) Validate() error {
	return validateUsername(&m.Username)
}

// JoinRoom asks to be seated in an existing room
type JoinRoom struct {
	RoomID   string `json:"roomId" msgpack:"roomId"`
	Username string `json:"username" msgpack:"username"`
}

func (*JoinRoom) Event() string { return EventJoinRoom }

func (m *JoinRoom) Validate() error {
	if err := validateRoomID(&m.RoomID); err != nil {
		return err
	}
	return validateUsername(&m.Username)
}

// StartGame asks the room to begin play
type StartGame struct {
	RoomID string `json:"roomId" msgpack:"roomId"`
}

func (*StartGame) Event() string { return EventStartGame }

func (m *StartGame) Validate() error {
	return validateRoomID(&m.RoomID)
}

// UpdatePlayer is the sender's self-reported position and facing
type UpdatePlayer struct {
	RoomID   string           `json:"roomId" msgpack:"roomId"`
	Position physics.Vector2D `json:"position" msgpack:"position"`
	Rotation float64          `json:"rotation" msgpack:"rotation"`
}

func (*UpdatePlayer) Event() string { return EventUpdatePlayer }

func (m *UpdatePlayer) Validate() error {
	if err := validateRoomID(&m.RoomID); err != nil {
		return err
	}
	if !m.Position.IsFinite() {
		return fmt.Errorf("%w: position must be finite", ErrInvalidField)
	}
	return validateFinite("rotation", m.Rotation)
}

// Shoot fires a projectile from position along angle
type Shoot struct {
	RoomID   string           `json:"roomId" msgpack:"roomId"`
	Position physics.Vector2D `json:"position" msgpack:"position"`
	Angle    float64          `json:"angle" msgpack:"angle"`
}

func (*Shoot) Event() string { return EventShoot }

func (m *Shoot) Validate() error {
	if err := validateRoomID(&m.RoomID); err != nil {
		return err
	}
	if !m.Position.IsFinite() {
		return fmt.Errorf("%w: position must be finite", ErrInvalidField)
	}
	return validateFinite("angle", m.Angle)
}

func newInbound(event string) (Inbound, bool) {
	switch event {
	case EventCreateRoom:
		return &CreateRoom{}, true
	case EventJoinRoom:
		return &JoinRoom{}, true
	case EventStartGame:
		return &StartGame{}, true
	case EventUpdatePlayer:
		return &UpdatePlayer{}, true
	case EventShoot:
		return &Shoot{}, true
	}
	return nil, false
}

func validateUsername(username *string) error {
	*username = strings.TrimSpace(*username)
	n := utf8.RuneCountInString(*username)
	if n == 0 {
		return fmt.Errorf("%w: username is required", ErrInvalidField)
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidField, MaxUsernameLength)
	}
	return nil
}

// NormalizeRoomID trims and upper-cases a room code as typed by a user
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func validateRoomID(id *string) error {
	*id = NormalizeRoomID(*id)
	if *id == "" {
		return fmt.Errorf("%w: roomId is required", ErrInvalidField)
	}
	return nil
}

func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidField, name)
	}
	return nil
}
