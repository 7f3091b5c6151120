// Package protocol defines the named-event wire format shared by the chat
// server and its Go client. Every frame is a JSON envelope {"type", "data"}.
package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Client -> server events.
const (
	EventJoin    = "join"
	EventMessage = "message"
	EventTyping  = "typing"
	EventLeave   = "leave"
	EventPing    = "ping"
	EventWhoAmI  = "whoami"
)

// Server -> client events. message, typing and whoami reuse the names above.
const (
	EventHistory  = "history"
	EventStatus   = "status"
	EventUserList = "user_list"
	EventPong     = "pong"
)

var ErrMissingType = errors.New("envelope without type")

// Envelope wraps every frame on the wire.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type LeavePayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type MessagePayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Msg      string `json:"msg"`
}

type TypingPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Typing   bool   `json:"typing"`
}

// ChatEntry is one line of chat, used both for live message events and history replay.
type ChatEntry struct {
	Username string `json:"username"`
	Msg      string `json:"msg"`
	TS       int64  `json:"ts,omitempty"`
}

type StatusPayload struct {
	Msg string `json:"msg"`
}

type TypingNotice struct {
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

type WhoAmIPayload struct {
	Username string `json:"username,omitempty"`
	Room     string `json:"room,omitempty"`
}

// Encode marshals payload v under the given event type.
func Encode(eventType string, v any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", eventType, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses the envelope; the payload stays raw until DecodeData.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into v. An absent payload leaves v untouched.
func DecodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return nil
}

// Millis converts a server timestamp to the ts wire field.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// StatusJoined and StatusLeft render the human-readable presence notices.
func StatusJoined(username string) StatusPayload {
	return StatusPayload{Msg: username + " joined the room."}
}

func StatusLeft(username string) StatusPayload {
	return StatusPayload{Msg: username + " left the room."}
}
