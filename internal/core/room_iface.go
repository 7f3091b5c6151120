package core

import (
	"github.com/dkeye/Chat/internal/domain"
)

// RoomService is the core-facing API of a room.
// It owns the membership set, history ring and typing set, and serializes
// every mutation of them. It never closes transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Roster() []string
	History() []domain.Message
	TypingUsers() []string
	Has(sid SessionID) bool

	Join(ms MemberSession) (PublishResult, error)
	Leave(sid SessionID) (LeaveResult, error)
	Post(sid SessionID, text string) (PublishResult, error)
	SetTyping(sid SessionID, typing bool) (PublishResult, error)

	// CloseIfEmpty marks an empty room closed; a closed room refuses joins.
	CloseIfEmpty() bool
	Closed() bool
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}

type RoomRegistry interface {
	ResolveOrCreate(name domain.RoomName) RoomService
	Get(name domain.RoomName) (RoomService, bool)
	ReleaseIfEmpty(room RoomService) bool
	List() []RoomInfo
}
