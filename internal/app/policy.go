package app

import (
	"strings"

	"github.com/dkeye/Chat/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what to do with a recipient whose outbound queue is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

// DropPolicy keeps the member and loses the frame for it only.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects members that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return KickMember
}

// PolicyFromName maps the backpressure_policy config value; unknown values drop.
func PolicyFromName(name string) Policy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kick":
		return KickPolicy{}
	default:
		return DropPolicy{}
	}
}
