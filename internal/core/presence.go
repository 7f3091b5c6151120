package core

import "github.com/dkeye/Chat/pkg/protocol"

// roster lists display names in join order. Caller holds r.mu.
func (r *roomImpl) roster() []string {
	names := make([]string, 0, len(r.order))
	for _, sid := range r.order {
		names = append(names, r.members[sid].name)
	}
	return names
}

// publishRoster sends the full user list to every current member.
func (r *roomImpl) publishRoster() PublishResult {
	return r.fanout(protocol.EventUserList, r.roster(), "")
}

func (r *roomImpl) announce(status protocol.StatusPayload) PublishResult {
	return r.fanout(protocol.EventStatus, status, "")
}
