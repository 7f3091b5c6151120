package core

import (
	"strings"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/rs/zerolog/log"
)

func (r *roomImpl) Post(sid SessionID, text string) (PublishResult, error) {
	text = strings.TrimSpace(text)

	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return PublishResult{}, ErrNotMember
	}
	if text == "" {
		return PublishResult{}, ErrEmptyMessage
	}
	msg := domain.Message{
		Username:  m.name,
		Room:      r.room.Name,
		Text:      text,
		Timestamp: r.now(),
	}
	r.history.Push(msg)
	// The sender gets its own message back; clients never render locally.
	return r.fanout(protocol.EventMessage, entryOf(msg), ""), nil
}

func (r *roomImpl) replayHistory(m *roomMember) PublishResult {
	msgs := r.history.Snapshot()
	entries := make([]protocol.ChatEntry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, entryOf(msg))
	}
	return r.unicast(m, protocol.EventHistory, entries)
}

func entryOf(msg domain.Message) protocol.ChatEntry {
	return protocol.ChatEntry{
		Username: msg.Username,
		Msg:      msg.Text,
		TS:       protocol.Millis(msg.Timestamp),
	}
}

// fanout encodes once and offers the frame to every member except `except`.
// A failed send only affects that recipient. Caller holds r.mu.
func (r *roomImpl) fanout(eventType string, payload any, except SessionID) PublishResult {
	frame, err := protocol.Encode(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("event", eventType).Msg("encode")
		return PublishResult{}
	}
	res := PublishResult{}
	for _, sid := range r.order {
		if sid == except {
			continue
		}
		r.deliver(r.members[sid], Frame(frame), &res)
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Name)).Str("event", eventType).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) unicast(m *roomMember, eventType string, payload any) PublishResult {
	frame, err := protocol.Encode(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("event", eventType).Msg("encode")
		return PublishResult{}
	}
	res := PublishResult{}
	r.deliver(m, Frame(frame), &res)
	return res
}

func (r *roomImpl) deliver(m *roomMember, frame Frame, res *PublishResult) {
	sig := m.session.Signal()
	if sig == nil {
		res.Dropped = append(res.Dropped, m.session)
		return
	}
	if err := sig.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(m.session.ID())).Msg("send dropped")
		res.Dropped = append(res.Dropped, m.session)
		return
	}
	res.SendTo++
}
