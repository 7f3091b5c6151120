package signal

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleMessage(
	sid core.SessionID,
	env protocol.Envelope,
) {
	var p protocol.MessagePayload
	if err := protocol.DecodeData(env, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad message payload")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("message rate limited")
		return
	}
	if err := ctl.Orch.Message(sid, p.Room, p.Msg); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("message dropped")
	}
}

func (ctl *SignalWSController) handleTyping(
	sid core.SessionID,
	env protocol.Envelope,
) {
	var p protocol.TypingPayload
	if err := protocol.DecodeData(env, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	if err := ctl.Orch.Typing(sid, p.Room, p.Typing); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("typing dropped")
	}
}
