package signal

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/pkg/protocol"
)

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	resp := protocol.WhoAmIPayload{}
	if sess, ok := ctl.Orch.Registry.GetSession(sid); ok {
		resp.Username = sess.Meta().Name()
	}
	if roomName, _, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.Room = string(roomName)
	}
	ctl.sendJSON(conn, protocol.EventWhoAmI, resp)
}
