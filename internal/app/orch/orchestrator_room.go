package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join binds the display name and puts the session into roomRaw. A session in
// another room leaves it first; a repeated join to the same room is ignored.
func (o *Orchestrator) Join(sid core.SessionID, username, roomRaw string) error {
	roomName, err := domain.ParseRoomName(roomRaw)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	username, err = domain.NormalizeUsername(username)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}
	session, ok := o.Registry.GetSession(sid)
	if !ok || session.Meta() == nil || session.Meta().User == nil {
		return ErrUnknownSession
	}

	if cur, _, ok := o.Registry.RoomOf(sid); ok {
		if cur == roomName {
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(cur)).Msg("duplicate join ignored")
			return nil
		}
		o.leaveCurrent(sid)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(cur)).Msg("left previous room")
	}

	// Not in any room here, so the name is still mutable.
	if err := session.Meta().User.SetUsername(username); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	for {
		room := o.Rooms.ResolveOrCreate(roomName)
		res, err := room.Join(session)
		switch {
		case errors.Is(err, core.ErrRoomClosed):
			// Lost a race with the room's release; the next resolve creates a new one.
			continue
		case errors.Is(err, core.ErrAlreadyMember):
			o.Registry.UpdateRoom(sid, roomName)
			return nil
		case err != nil:
			return fmt.Errorf("join: %w", err)
		}
		o.Registry.UpdateRoom(sid, roomName)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomName)).Str("user", username).Msg("added to room")
		o.handleDropped(room, res)
		return nil
	}
}

// Leave is a no-op unless the session is in the named room (or roomRaw is empty).
func (o *Orchestrator) Leave(sid core.SessionID, roomRaw string) {
	if _, err := o.currentRoom(sid, roomRaw); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave ignored")
		return
	}
	o.leaveCurrent(sid)
}

func (o *Orchestrator) leaveCurrent(sid core.SessionID) {
	roomName, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	o.Registry.RemoveRoom(sid)
	room, ok := o.Rooms.Get(roomName)
	if !ok {
		return
	}
	res, err := room.Leave(sid)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomName)).Msg("leave on non-member")
	} else {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomName)).Int("remaining", res.Remaining).Msg("removed from room")
		o.handleDropped(room, res.PublishResult)
	}
	o.Rooms.ReleaseIfEmpty(room)
}

// currentRoom resolves the session's room and checks it against the room the
// client named in its payload, if any.
func (o *Orchestrator) currentRoom(sid core.SessionID, roomRaw string) (core.RoomService, error) {
	cur, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, ErrNotInRoom
	}
	if named, err := domain.ParseRoomName(roomRaw); err == nil && named != cur {
		return nil, ErrRoomMismatch
	}
	room, ok := o.Rooms.Get(cur)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}
