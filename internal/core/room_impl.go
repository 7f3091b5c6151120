package core

import (
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/rs/zerolog/log"
)

type roomMember struct {
	session MemberSession
	// name is captured at join and never changes while the member stays.
	name string
}

// roomImpl is a threadsafe in-memory room.
// All fan-out happens under mu so every member observes the same event order.
// It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room
	mu   sync.Mutex

	members map[SessionID]*roomMember
	order   []SessionID
	history *History
	typing  map[SessionID]struct{}
	closed  bool

	now func() time.Time
}

func NewRoomService(room *domain.Room, historyCapacity int) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[SessionID]*roomMember),
		history: NewHistory(historyCapacity),
		typing:  make(map[SessionID]struct{}),
		now:     time.Now,
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *roomImpl) Has(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[sid]
	return ok
}

func (r *roomImpl) Join(ms MemberSession) (PublishResult, error) {
	sid := ms.ID()
	name := ms.Meta().Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, ErrRoomClosed
	}
	if _, ok := r.members[sid]; ok {
		return PublishResult{}, ErrAlreadyMember
	}
	m := &roomMember{session: ms, name: name}
	r.members[sid] = m
	r.order = append(r.order, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(sid)).Str("user", name).Msg("member added")

	// History goes out before anything else the joiner can see from this room.
	res := r.replayHistory(m)
	res.merge(r.announce(protocol.StatusJoined(name)))
	res.merge(r.publishRoster())
	return res, nil
}

func (r *roomImpl) Leave(sid SessionID) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sid]
	if !ok {
		return LeaveResult{}, ErrNotMember
	}
	delete(r.members, sid)
	for i, s := range r.order {
		if s == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	_, wasTyping := r.typing[sid]
	delete(r.typing, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(sid)).Msg("member removed")

	res := LeaveResult{Username: m.name, Remaining: len(r.members)}
	if wasTyping {
		res.merge(r.fanout(protocol.EventTyping, protocol.TypingNotice{Username: m.name, Typing: false}, ""))
	}
	res.merge(r.announce(protocol.StatusLeft(m.name)))
	res.merge(r.publishRoster())
	return res, nil
}

func (r *roomImpl) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *roomImpl) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MemberDTO, 0, len(r.order))
	for _, sid := range r.order {
		m := r.members[sid]
		dto := MemberDTO{Username: m.name}
		if u := m.session.Meta().User; u != nil {
			dto.ID = u.ID
		}
		out = append(out, dto)
	}
	return out
}

func (r *roomImpl) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster()
}

func (r *roomImpl) History() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot()
}

func (r *roomImpl) TypingUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.typing))
	for _, sid := range r.order {
		if _, ok := r.typing[sid]; ok {
			out = append(out, r.members[sid].name)
		}
	}
	return out
}
