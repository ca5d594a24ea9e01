// Package protocol defines the messages exchanged with game clients and
// the codecs that frame them. Every frame is an envelope of the form
// {"event": name, "data": payload}.
package protocol

// Client to server events
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventStartGame    = "startGame"
	EventUpdatePlayer = "updatePlayer"
	EventShoot        = "shoot"
)

// Server to client events
const (
	EventRoomCreated       = "roomCreated"
	EventRoomJoined        = "roomJoined"
	EventPlayerJoined      = "playerJoined"
	EventPlayerLeft        = "playerLeft"
	EventCreatorChanged    = "creatorChanged"
	EventPlayerUpdated     = "playerUpdated"
	EventGameStarted       = "gameStarted"
	EventProjectileCreated = "projectileCreated"
	EventProjectilesUpdate = "projectilesUpdate"
	EventProjectileHit     = "projectileHit"
	EventPlayerDied        = "playerDied"
	EventGameOver          = "gameOver"
	EventError             = "error"
)

// Message is anything that travels inside an envelope
type Message interface {
	Event() string
}

// Envelope is the frame every message is wrapped in
type Envelope struct {
	Event string `json:"event" msgpack:"event"`
	Data  any    `json:"data" msgpack:"data"`
}
