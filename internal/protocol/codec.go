package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns envelopes into frames and back
type Codec interface {
	Name() string
	// Binary reports whether frames are sent as binary rather than text
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Split reads the envelope of frame, returning the event name and
	// the still-encoded payload
	Split(frame []byte) (event string, data []byte, err error)
}

const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

var (
	JSON        Codec = jsonCodec{}
	MessagePack Codec = msgpackCodec{}
)

// CodecFor returns the codec registered under name. An empty name
// selects JSON.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", EncodingJSON:
		return JSON, nil
	case EncodingMsgpack:
		return MessagePack, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return EncodingJSON }
func (jsonCodec) Binary() bool                       { return false }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Split(frame []byte) (string, []byte, error) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.Event, env.Data, nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return EncodingMsgpack }
func (msgpackCodec) Binary() bool                       { return true }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (msgpackCodec) Split(frame []byte) (string, []byte, error) {
	var env struct {
		Event string             `msgpack:"event"`
		Data  msgpack.RawMessage `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.Event, env.Data, nil
}

// Encode wraps msg in an envelope
func Encode(c Codec, msg Message) ([]byte, error) {
	frame, err := c.Marshal(Envelope{Event: msg.Event(), Data: msg})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Event(), err)
	}
	return frame, nil
}

// Decode reads and validates a client frame
func Decode(c Codec, frame []byte) (Inbound, error) {
	event, data, err := c.Split(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg, ok := newInbound(event)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if err := unmarshalData(c, data, msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeServer reads a server frame. Clients use it.
func DecodeServer(c Codec, frame []byte) (Message, error) {
	event, data, err := c.Split(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg, ok := newOutbound(event)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if err := unmarshalData(c, data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func unmarshalData(c Codec, data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if err := c.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
