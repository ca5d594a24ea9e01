package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// createRoom and startGame carry a single field, so clients may send it
// as the whole payload instead of wrapping it in an object.

func (m *CreateRoom) UnmarshalJSON(data []byte) error {
	type object CreateRoom
	return unmarshalJSONBare(data, &m.Username, (*object)(m))
}

func (m *CreateRoom) DecodeMsgpack(dec *msgpack.Decoder) error {
	type object CreateRoom
	return decodeMsgpackBare(dec, &m.Username, (*object)(m))
}

func (m *StartGame) UnmarshalJSON(data []byte) error {
	type object StartGame
	return unmarshalJSONBare(data, &m.RoomID, (*object)(m))
}

func (m *StartGame) DecodeMsgpack(dec *msgpack.Decoder) error {
	type object StartGame
	return decodeMsgpackBare(dec, &m.RoomID, (*object)(m))
}

func unmarshalJSONBare(data []byte, field *string, object any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, field)
	}
	return json.Unmarshal(data, object)
}

func decodeMsgpackBare(dec *msgpack.Decoder, field *string, object any) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if msgpcode.IsString(code) {
		*field, err = dec.DecodeString()
		return err
	}
	return dec.Decode(object)
}
