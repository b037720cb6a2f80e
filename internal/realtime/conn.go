package realtime

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// wire is the transport surface the connection needs. *websocket.Conn
// satisfies it; tests substitute an in-process fake.
type wire interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Conn is one live transport session. It owns two goroutines: a read
// loop feeding inbound envelopes to the hub and a write loop draining
// the send channel and emitting liveness pings. The identity binding
// lives in the registry, not here — a Conn is anonymous plumbing.
//
// Lifecycle: Connecting → Open(Anonymous) → Open(Registered) → Closed.
// Closed is terminal; reconnecting clients get a brand-new Conn.
type Conn struct {
	ws       wire
	send     chan []byte
	done     chan struct{}
	closed   atomic.Bool
	lastPong atomic.Int64 // unix nanos of the last pong envelope
}

func newConn(ws wire, sendBuffer int) *Conn {
	c := &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.lastPong.Store(time.Now().UnixNano())
	return c
}

// Close tears the transport down. Idempotent; the read loop unblocks
// with an error and the hub detaches the connection from the registry.
func (c *Conn) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.done)
		_ = c.ws.Close()
	}
}

// trySend queues a payload without blocking. False means the connection
// is closed or its buffer is full — the caller treats both as a dead
// peer and prunes.
func (c *Conn) trySend(payload []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// sendEvent marshals and queues a single envelope for this connection.
func (c *Conn) sendEvent(evt Envelope) bool {
	payload, err := json.Marshal(evt)
	if err != nil {
		return false
	}
	return c.trySend(payload)
}

// readLoop pumps inbound messages into the hub until the transport
// errors or closes. The read deadline is two ping intervals so a peer
// that stops talking entirely is reaped even if the write loop stalls.
func (c *Conn) readLoop(h *Hub) {
	defer h.detach(c)
	defer c.Close()

	for {
		_ = c.ws.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", "err", err)
			}
			return
		}
		h.handleInbound(c, data)
	}
}

// writeLoop drains the send channel and runs the liveness probe: a ping
// envelope every interval, and a missed pong by the next tick marks the
// connection dead.
func (c *Conn) writeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer c.Close()

	var lastPing time.Time
	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if !lastPing.IsZero() && c.lastPong.Load() < lastPing.UnixNano() {
				// No pong since our last ping: dead peer.
				return
			}
			payload, err := json.Marshal(pingEvent())
			if err != nil {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			lastPing = time.Now()
		case <-c.done:
			return
		}
	}
}
