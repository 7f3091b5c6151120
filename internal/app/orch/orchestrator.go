package orch

import (
	"errors"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrNotInRoom      = errors.New("session is not in a room")
	ErrRoomMismatch   = errors.New("event names a room the session is not in")
)

// Orchestrator applies inbound session events to rooms. Each session's events
// arrive sequentially from its read pump; rooms serialize across sessions.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomRegistry
	Policy   app.Policy
}

// OnDisconnect is the implicit leave for a vanished transport.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.leaveCurrent(sid)
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) handleDropped(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).Str("room", string(room.Room().Name)).Msg("kicking slow member")
			o.Registry.Cancel(slow.ID())
		case app.DropFrame, app.NoAction:
		}
	}
}
