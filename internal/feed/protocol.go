package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"campfire/internal/core"
	"campfire/internal/entity"
)

// Envelope types.
const (
	MsgHello   = "hello"
	MsgSay     = "say"
	MsgBurn    = "burn"
	MsgPing    = "ping"
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgBurned  = "burned"
	MsgError   = "error"
)

// Envelope frames every websocket message.
type Envelope struct {
	Type string          `json:"type"`
	Room string          `json:"room,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hello is the first client message on a connection.
type Hello struct {
	ID       string `json:"id,omitempty"`
	JoinedAt int64  `json:"joinedAt,omitempty"`
}

// Say posts the sender's active message.
type Say struct {
	Text string `json:"text"`
}

// Welcome answers Hello with the identity the server assigned.
type Welcome struct {
	ID       string    `json:"id"`
	JoinedAt int64     `json:"joinedAt"`
	Mode     core.Mode `json:"mode"`
}

// Message is an active chat message as sent on the wire.
type Message struct {
	SenderID   string `json:"senderId"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"createdAt"`
	GlyphIndex *int   `json:"glyphIdx,omitempty"`
	Phase      Phase  `json:"phase"`
}

// RoomState is a full snapshot of a room.
type RoomState struct {
	Room         string               `json:"room"`
	Mode         core.Mode            `json:"mode"`
	Seed         int64                `json:"seed"`
	Users        int                  `json:"users"`
	Participants []entity.Participant `json:"participants"`
	Messages     []Message            `json:"messages"`
}

// Burned reports a message leaving the room.
type Burned struct {
	SenderID string `json:"senderId"`
	Expired  bool   `json:"expired"`
}

// Error carries a rejected command back to its sender.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrEmptyFrame is returned when decoding a zero-length frame.
var ErrEmptyFrame = errors.New("empty frame")

// Encode wraps payload in an envelope of type t.
func Encode(t, room string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encode: missing envelope type")
	}
	env := Envelope{Type: t, Room: room}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Data = b
	}
	return json.Marshal(env)
}

// DecodeEnvelope parses the outer frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// DecodePayload parses the envelope data into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.Type)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return out, nil
}

// Entities converts wire messages into the scene's message list.
func (s RoomState) Entities() []entity.Message {
	out := make([]entity.Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		out = append(out, entity.Message{SenderID: m.SenderID, Text: m.Text, CreatedAt: m.CreatedAt})
	}
	return out
}
