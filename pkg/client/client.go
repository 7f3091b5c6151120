// Package client is a Go client for the chat server's WebSocket endpoint.
package client

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dkeye/Chat/pkg/protocol"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrEmptyURL         = errors.New("empty URL")
	ErrUnknownEvent     = errors.New("unknown event")
)

type Client struct {
	cfg        Config
	ws         *websocket.Conn
	dispatcher Dispatcher

	mu        sync.Mutex
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewClient constructs a client. Register callbacks before Connect.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, done: make(chan struct{})}
}

func (c *Client) OnHistory(fn func([]protocol.ChatEntry))  { c.dispatcher.SetOnHistory(fn) }
func (c *Client) OnMessage(fn func(protocol.ChatEntry))    { c.dispatcher.SetOnMessage(fn) }
func (c *Client) OnStatus(fn func(protocol.StatusPayload)) { c.dispatcher.SetOnStatus(fn) }
func (c *Client) OnUserList(fn func([]string))             { c.dispatcher.SetOnUserList(fn) }
func (c *Client) OnTyping(fn func(protocol.TypingNotice))  { c.dispatcher.SetOnTyping(fn) }
func (c *Client) OnWhoAmI(fn func(protocol.WhoAmIPayload)) { c.dispatcher.SetOnWhoAmI(fn) }
func (c *Client) OnPong(fn func())                         { c.dispatcher.SetOnPong(fn) }
func (c *Client) OnError(fn func(error))                   { c.dispatcher.SetOnError(fn) }

// Connect dials the server and starts the read loop. Events are dispatched
// on the read loop goroutine, one at a time, in arrival order.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return ErrAlreadyConnected
	}
	if c.cfg.URL == "" {
		return ErrEmptyURL
	}

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}
	ws, _, err := websocket.Dial(dialCtx, c.cfg.URL, &websocket.DialOptions{HTTPHeader: c.cfg.Header})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.ws = ws
	c.cancel = cancel
	c.connected = true
	go c.readLoop(runCtx)
	return nil
}

// Done is closed once the read loop has exited.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Join(ctx context.Context, username, room string) error {
	return c.write(ctx, protocol.EventJoin, protocol.JoinPayload{Username: username, Room: room})
}

func (c *Client) Send(ctx context.Context, room, text string) error {
	return c.write(ctx, protocol.EventMessage, protocol.MessagePayload{Room: room, Msg: text})
}

func (c *Client) Typing(ctx context.Context, room string, typing bool) error {
	return c.write(ctx, protocol.EventTyping, protocol.TypingPayload{Room: room, Typing: typing})
}

func (c *Client) Leave(ctx context.Context, room string) error {
	return c.write(ctx, protocol.EventLeave, protocol.LeavePayload{Room: room})
}

func (c *Client) Ping(ctx context.Context) error {
	return c.write(ctx, protocol.EventPing, nil)
}

func (c *Client) WhoAmI(ctx context.Context) error {
	return c.write(ctx, protocol.EventWhoAmI, nil)
}

// Close shuts down the read loop and closes the WebSocket.
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.cancel()
	ws := c.ws
	c.mu.Unlock()
	return ws.Close(websocket.StatusNormalClosure, "client close")
}

func (c *Client) write(ctx context.Context, eventType string, v any) error {
	c.mu.Lock()
	ws, connected := c.ws, c.connected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	frame, err := protocol.Encode(eventType, v)
	if err != nil {
		return err
	}
	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}
	return ws.Write(ctx, websocket.MessageText, frame)
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)
	for {
		var env protocol.Envelope
		if err := wsjson.Read(ctx, c.ws, &env); err != nil {
			if !isExpectedDisconnect(ctx, err) {
				c.dispatcher.fireError(err)
			}
			return
		}
		c.dispatcher.Dispatch(env)
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
