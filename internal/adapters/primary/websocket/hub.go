package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
)

// Hub maintains the set of live viewer connections and fans events out
// to all of them. Every connected viewer receives every event; there is
// no per-client filtering or topic subscription.
//
// The hub is an explicitly constructed instance wired in at startup,
// never a package-level singleton. It exclusively owns its membership
// set: a client belongs to the hub from Register until Unregister, and
// no other component keeps a long-lived reference to it.
type Hub struct {
	// mu protects the clients set.
	mu      sync.RWMutex
	clients map[*Client]struct{}

	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket_hub"),
	}
}

// Register adds a newly-established client to the live set. It always
// succeeds; a client registered in the middle of a broadcast may or may
// not receive that broadcast.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		"client_id", client.ID,
		"total_connections", total,
	)
}

// Unregister removes a client from the live set and closes its send
// channel exactly once. It is idempotent: unregistering an already
// absent client is a no-op, which covers the race between a
// client-initiated disconnect and a broadcast-triggered removal.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client]
	if present {
		delete(h.clients, client)
	}
	total := len(h.clients)
	h.mu.Unlock()

	// CloseSend is safe to call on both paths; sync.Once makes the
	// double-close race harmless.
	client.CloseSend()

	if present {
		h.logger.Info("client unregistered",
			"client_id", client.ID,
			"total_connections", total,
		)
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// snapshot returns a point-in-time copy of the membership so the fan-out
// loop never iterates the live map while it mutates.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// Broadcast serializes the event once and enqueues the shared payload to
// every registered client. Delivery failures are isolated per client: a
// client whose send buffer is full (a consumer too slow to drain it) is
// unregistered on the spot and the fan-out continues to the rest. The
// caller is never blocked on a slow client and never sees an error.
//
// Events submitted by one caller in sequence reach each surviving
// client's queue in submission order.
func (h *Hub) Broadcast(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		// A malformed payload can only come from a programming error in
		// an event constructor; drop the event rather than poison the
		// connections.
		h.logger.Error("failed to serialize event, dropping",
			"event_type", event.Type,
			"error", err,
		)
		return
	}

	clients := h.snapshot()
	if len(clients) == 0 {
		return
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"client_count", len(clients),
	)

	for _, client := range clients {
		if !client.enqueue(payload) {
			h.logger.Warn("client send buffer full, unregistering",
				"client_id", client.ID,
				"event_type", event.Type,
			)
			h.Unregister(client)
		}
	}
}

// Shutdown disconnects every client. Used on graceful server shutdown.
func (h *Hub) Shutdown() {
	for _, client := range h.snapshot() {
		h.Unregister(client)
	}
}
