package signal

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	env protocol.Envelope,
	prefill Prefill,
) {
	var p protocol.JoinPayload
	if err := protocol.DecodeData(env, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.Username == "" {
		p.Username = prefill.Username
	}
	if p.Room == "" {
		p.Room = prefill.Room
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("name", p.Username).Msg("join")
	if err := ctl.Orch.Join(sid, p.Username, p.Room); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join dropped")
	}
}

// handleLeave exits the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	env protocol.Envelope,
) {
	var p protocol.LeavePayload
	if err := protocol.DecodeData(env, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("leave")
	ctl.Orch.Leave(sid, p.Room)
}
