package core

import (
	"errors"

	"github.com/dkeye/Chat/internal/domain"
)

// Frame is one encoded wire event.
type Frame []byte

type SessionID string

var (
	ErrRoomClosed    = errors.New("room closed")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
	ErrEmptyMessage  = errors.New("empty message")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

func (p *PublishResult) merge(other PublishResult) {
	p.SendTo += other.SendTo
	for _, d := range other.Dropped {
		dup := false
		for _, have := range p.Dropped {
			if have.ID() == d.ID() {
				dup = true
				break
			}
		}
		if !dup {
			p.Dropped = append(p.Dropped, d)
		}
	}
}

// LeaveResult is what remains of a room after a member left.
type LeaveResult struct {
	PublishResult
	Username  string
	Remaining int
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}
