package domain

import (
	"errors"
	"strings"
)

var ErrRoomNameEmpty = errors.New("room name empty")

// RoomName is a free-form, case-sensitive room key.
type RoomName string

type Room struct {
	Name RoomName
}

// ParseRoomName trims whitespace; nothing else is validated.
func ParseRoomName(raw string) (RoomName, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrRoomNameEmpty
	}
	return RoomName(raw), nil
}
