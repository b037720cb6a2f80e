package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/devquery-api/internal/domain"
	"github.com/gorilla/websocket"
)

const resolveTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UserResolver answers whether a register event names a real user.
type UserResolver interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Hub owns the registry and all connection goroutines. It is the single
// owner of realtime state: constructed in main, injected into the
// router, started and stopped with the process. A connection arrives
// anonymous, binds to a user via a register envelope, and is dropped
// from the registry when its transport dies or a liveness probe fails.
//
// Delivery is at-most-once: events for users with no live connection
// are dropped, and clients observe the state on their next REST fetch.
type Hub struct {
	registry     *Registry
	users        UserResolver
	logger       *slog.Logger
	pingInterval time.Duration
	sendBuffer   int
	running      atomic.Bool
}

func NewHub(users UserResolver, logger *slog.Logger, pingInterval time.Duration, sendBuffer int) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry:     NewRegistry(),
		users:        users,
		logger:       logger,
		pingInterval: pingInterval,
		sendBuffer:   sendBuffer,
	}
}

// Start makes the hub accept connections.
func (h *Hub) Start() { h.running.Store(true) }

// Stop rejects new connections and closes every tracked one.
func (h *Hub) Stop() {
	h.running.Store(false)
	for _, c := range h.registry.All() {
		c.Close()
	}
}

// IsOnline reports live presence for REST collaborators.
func (h *Hub) IsOnline(userID string) bool { return h.registry.IsOnline(userID) }

// ListOnline returns the current roster for the poll fallback endpoint.
func (h *Hub) ListOnline() []string { return h.registry.ListOnline() }

// ServeWS upgrades the request and runs the connection until it closes.
// The caller's goroutine becomes the read loop, as the handshake ack
// must be written before any inbound traffic is processed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !h.running.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	c := newConn(ws, h.sendBuffer)
	h.attach(c)
	c.readLoop(h)
}

// attach tracks a connection, acks the handshake and starts its writer.
// Split from ServeWS so tests can drive fake transports through the
// exact production path.
func (h *Hub) attach(c *Conn) {
	h.registry.Track(c)
	c.sendEvent(Envelope{Type: TypeConnection, Message: "connected"})
	go c.writeLoop(h.pingInterval)
}

// detach removes a connection from the registry; if its user just went
// offline the roster broadcast keeps every client's view consistent.
// Idempotent — both the read loop teardown and dispatch pruning land
// here.
func (h *Hub) detach(c *Conn) {
	c.Close()
	userID, wentOffline := h.registry.Forget(c)
	if wentOffline {
		h.logger.Debug("user went offline", "user_id", userID)
		h.BroadcastOnlineUsers()
	}
}

// handleInbound processes one client envelope. All protocol failures
// are non-fatal: the client gets an error event and the connection
// stays open (and anonymous, if it was).
func (h *Hub) handleInbound(c *Conn, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.sendEvent(errorEvent("invalid message format"))
		return
	}
	switch in.Type {
	case TypeRegister:
		h.handleRegister(c, in.UserID)
	case TypePing:
		c.sendEvent(pongEvent(in.Timestamp))
	case TypePong:
		c.lastPong.Store(time.Now().UnixNano())
	default:
		c.sendEvent(errorEvent("unknown event type: " + in.Type))
	}
}

func (h *Hub) handleRegister(c *Conn, userID string) {
	if userID == "" {
		c.sendEvent(errorEvent("register requires a userId"))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	if _, err := h.users.Get(ctx, userID); err != nil {
		c.sendEvent(errorEvent("unknown user"))
		return
	}
	cameOnline, prevWentOffline, bound := h.registry.Bind(c, userID)
	if !bound {
		// A disconnect raced the register; the registry already forgot
		// this connection, so there is nothing to ack.
		h.logger.Debug("register raced a disconnect", "user_id", userID)
		return
	}
	c.sendEvent(Envelope{Type: TypeRegistered, UserID: userID})
	if cameOnline || prevWentOffline {
		h.logger.Debug("presence changed", "user_id", userID)
		h.BroadcastOnlineUsers()
	}
}
