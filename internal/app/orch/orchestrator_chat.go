package orch

import (
	"fmt"

	"github.com/dkeye/Chat/internal/core"
)

// Message records text in the session's room and echoes it to every member,
// sender included.
func (o *Orchestrator) Message(sid core.SessionID, roomRaw, text string) error {
	room, err := o.currentRoom(sid, roomRaw)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	res, err := room.Post(sid, text)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	o.handleDropped(room, res)
	return nil
}

// Typing relays the client's typing state to the other members.
func (o *Orchestrator) Typing(sid core.SessionID, roomRaw string, typing bool) error {
	room, err := o.currentRoom(sid, roomRaw)
	if err != nil {
		return fmt.Errorf("typing: %w", err)
	}
	res, err := room.SetTyping(sid, typing)
	if err != nil {
		return fmt.Errorf("typing: %w", err)
	}
	o.handleDropped(room, res)
	return nil
}
