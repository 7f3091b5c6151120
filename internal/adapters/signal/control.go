package signal

import "github.com/dkeye/Chat/pkg/protocol"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.sendJSON(conn, protocol.EventPong, nil)
}
