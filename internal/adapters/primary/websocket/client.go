package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for writing a single message to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound frames. Viewers never send application
	// messages, so anything beyond control-frame size is suspect.
	maxMessageSize = 512

	// sendBufferSize is the per-client queue of serialized events. A
	// client that falls this many events behind is disconnected.
	sendBufferSize = 256
)

// Client is a single WebSocket viewer connection. It decouples the hub's
// fan-out from the network: the hub enqueues into send and the write pump
// drains it, so one stalled peer never blocks a broadcast.
type Client struct {
	// ID identifies the connection in logs.
	ID uuid.UUID

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewClient wraps an upgraded connection. The caller is expected to
// Register the client with the hub and then start ReadPump and WritePump.
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With("client_id", id),
	}
}

// CloseSend closes the send channel exactly once, which terminates the
// write pump. Safe to call from multiple goroutines.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// enqueue attempts a non-blocking put of an already-serialized event.
// It reports false when the buffer is full; the hub treats that as a
// dead or hopelessly slow consumer.
func (c *Client) enqueue(payload []byte) (ok bool) {
	// Sending on a closed channel panics; a client can be enqueued to
	// after an Unregister raced with a broadcast snapshot.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump consumes inbound frames until the peer goes away. Viewers are
// not expected to send anything; whatever arrives is discarded. Its real
// job is detecting disconnects and keeping the pong deadline fresh.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

// WritePump drains the send channel onto the wire and keeps the
// connection alive with periodic pings. It exits when the send channel
// is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				// The hub closed the channel.
				c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}

			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
