package core

import "github.com/dkeye/Chat/pkg/protocol"

// SetTyping records the client-reported state and relays it to everyone else.
// There is no server-side expiry; the client is trusted to send typing=false.
func (r *roomImpl) SetTyping(sid SessionID, typing bool) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return PublishResult{}, ErrNotMember
	}
	if typing {
		r.typing[sid] = struct{}{}
	} else {
		delete(r.typing, sid)
	}
	return r.fanout(protocol.EventTyping, protocol.TypingNotice{Username: m.name, Typing: typing}, sid), nil
}
