package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry creates rooms lazily and drops them once they are empty.
// Lock order is always registry then room.
type RoomRegistry struct {
	mu              sync.RWMutex
	rooms           map[domain.RoomName]core.RoomService
	historyCapacity int
}

func NewRoomRegistry(historyCapacity int) *RoomRegistry {
	return &RoomRegistry{
		rooms:           make(map[domain.RoomName]core.RoomService),
		historyCapacity: historyCapacity,
	}
}

func (f *RoomRegistry) ResolveOrCreate(name domain.RoomName) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[name]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[name]; ok {
		return room
	}
	room = core.NewRoomService(&domain.Room{Name: name}, f.historyCapacity)
	f.rooms[name] = room
	log.Info().Str("module", "app.rooms").Str("room", string(name)).Msg("room created")
	return room
}

func (f *RoomRegistry) Get(name domain.RoomName) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[name]
	return room, ok
}

// ReleaseIfEmpty removes room iff it is still the registered instance and has
// no members. The emptiness check and the close happen under the room's own
// lock, so a join racing with this either lands before (room stays) or sees
// ErrRoomClosed and resolves a fresh room.
func (f *RoomRegistry) ReleaseIfEmpty(room core.RoomService) bool {
	name := room.Room().Name
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.rooms[name]; !ok || cur != room {
		return false
	}
	if !room.CloseIfEmpty() {
		return false
	}
	delete(f.rooms, name)
	log.Info().Str("module", "app.rooms").Str("room", string(name)).Msg("room released")
	return true
}

func (f *RoomRegistry) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for name, r := range f.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: r.MemberCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
