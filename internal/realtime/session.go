package realtime

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Session is one live realtime connection with a resolved identity.
// The concrete transport is hidden behind this interface so the registry,
// rooms and router can be exercised without a network in tests.
type Session interface {
	UserID() uint
	Email() string

	// Emit queues an event for delivery. It returns false only when the
	// session is closed; a full outbound buffer drops the event but still
	// reports true, since the peer is alive.
	Emit(ev Event) bool

	// Shutdown tears the session down. Safe to call more than once.
	Shutdown()
}

// Client is the websocket-backed Session implementation.
type Client struct {
	userID uint
	email  string
	conn   *websocket.Conn
	send   chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient wraps an accepted websocket connection and starts its write
// and keepalive loops.
func NewClient(userID uint, email string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		userID: userID,
		email:  email,
		conn:   conn,
		send:   make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}

	go c.writeLoop()
	go c.keepAliveLoop()

	return c
}

func (c *Client) UserID() uint { return c.userID }
func (c *Client) Email() string { return c.email }

func (c *Client) Emit(ev Event) bool {
	select {
	case <-c.ctx.Done():
		return false
	case c.send <- ev:
		return true
	default:
		// Buffer full: drop rather than block the emitter. A slow
		// client must not stall delivery to anyone else.
		return true
	}
}

func (c *Client) Shutdown() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.conn.Ping(pingCtx)
			cancel()
		}
	}
}
