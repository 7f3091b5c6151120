package client

import (
	"fmt"

	"github.com/dkeye/Chat/pkg/protocol"
)

// Dispatcher routes server events to registered callbacks.
type Dispatcher struct {
	onHistory  func([]protocol.ChatEntry)
	onMessage  func(protocol.ChatEntry)
	onStatus   func(protocol.StatusPayload)
	onUserList func([]string)
	onTyping   func(protocol.TypingNotice)
	onWhoAmI   func(protocol.WhoAmIPayload)
	onPong     func()
	onError    func(error)
}

func (d *Dispatcher) SetOnHistory(fn func([]protocol.ChatEntry))  { d.onHistory = fn }
func (d *Dispatcher) SetOnMessage(fn func(protocol.ChatEntry))    { d.onMessage = fn }
func (d *Dispatcher) SetOnStatus(fn func(protocol.StatusPayload)) { d.onStatus = fn }
func (d *Dispatcher) SetOnUserList(fn func([]string))             { d.onUserList = fn }
func (d *Dispatcher) SetOnTyping(fn func(protocol.TypingNotice))  { d.onTyping = fn }
func (d *Dispatcher) SetOnWhoAmI(fn func(protocol.WhoAmIPayload)) { d.onWhoAmI = fn }
func (d *Dispatcher) SetOnPong(fn func())                         { d.onPong = fn }
func (d *Dispatcher) SetOnError(fn func(error))                   { d.onError = fn }

func (d *Dispatcher) Dispatch(env protocol.Envelope) {
	switch env.Type {
	case protocol.EventHistory:
		dispatchData(d, env, d.onHistory)
	case protocol.EventMessage:
		dispatchData(d, env, d.onMessage)
	case protocol.EventStatus:
		dispatchData(d, env, d.onStatus)
	case protocol.EventUserList:
		dispatchData(d, env, d.onUserList)
	case protocol.EventTyping:
		dispatchData(d, env, d.onTyping)
	case protocol.EventWhoAmI:
		dispatchData(d, env, d.onWhoAmI)
	case protocol.EventPong:
		if d.onPong != nil {
			d.onPong()
		}
	default:
		d.fireError(fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type))
	}
}

func dispatchData[T any](d *Dispatcher, env protocol.Envelope, fn func(T)) {
	if fn == nil {
		return
	}
	var v T
	if err := protocol.DecodeData(env, &v); err != nil {
		d.fireError(err)
		return
	}
	fn(v)
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
