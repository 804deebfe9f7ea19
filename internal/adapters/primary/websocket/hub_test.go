package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qboard/qboard/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client with a custom buffer size and no network
// connection. Neither pump is started, so tests read c.send directly.
func newTestClient(h *Hub, bufSize int) *Client {
	return &Client{
		ID:     uuid.New(),
		hub:    h,
		send:   make(chan []byte, bufSize),
		logger: testLogger(),
	}
}

func drainOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("expected a queued payload, found none")
		return nil
	}
}

func TestHub_BroadcastWithNoClients(t *testing.T) {
	h := NewHub(testLogger())

	// Must neither panic nor block.
	h.Broadcast(domain.DeleteQuestionEvent(1))
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := NewHub(testLogger())
	c1 := newTestClient(h, 4)
	c2 := newTestClient(h, 4)
	h.Register(c1)
	h.Register(c2)
	require.Equal(t, 2, h.ClientCount())

	event := domain.DeleteAnswerEvent(7, 3)
	h.Broadcast(event)

	want, err := json.Marshal(event)
	require.NoError(t, err)

	for _, c := range []*Client{c1, c2} {
		assert.Equal(t, want, drainOne(t, c))
		assert.Empty(t, c.send, "client must receive the event exactly once")
	}
}

func TestHub_BroadcastPreservesOrder(t *testing.T) {
	h := NewHub(testLogger())
	c := newTestClient(h, 4)
	h.Register(c)

	first := domain.DeleteQuestionEvent(1)
	second := domain.UpdateQuestionEvent(1, domain.StatusEscalated)
	h.Broadcast(first)
	h.Broadcast(second)

	var got domain.Event

	require.NoError(t, json.Unmarshal(drainOne(t, c), &got))
	assert.Equal(t, domain.EventDeleteQuestion, got.Type)

	require.NoError(t, json.Unmarshal(drainOne(t, c), &got))
	assert.Equal(t, domain.EventUpdateQuestion, got.Type)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := NewHub(testLogger())
	slow := newTestClient(h, 1)
	healthy := newTestClient(h, 4)
	h.Register(slow)
	h.Register(healthy)

	// First broadcast fills the slow client's buffer.
	h.Broadcast(domain.DeleteQuestionEvent(1))
	require.Equal(t, 2, h.ClientCount())

	// Second broadcast finds it full and evicts it.
	h.Broadcast(domain.DeleteQuestionEvent(2))
	assert.Equal(t, 1, h.ClientCount())

	// The healthy client got both events.
	drainOne(t, healthy)
	drainOne(t, healthy)

	// Eviction closed the slow client's channel after the one queued
	// payload.
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open, "evicted client's send channel must be closed")
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := NewHub(testLogger())
	c := newTestClient(h, 1)
	h.Register(c)

	h.Unregister(c)
	assert.Equal(t, 0, h.ClientCount())

	// Read-pump teardown and broadcast eviction can race to unregister
	// the same client.
	assert.NotPanics(t, func() { h.Unregister(c) })
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_BroadcastAfterUnregisterSkipsClient(t *testing.T) {
	h := NewHub(testLogger())
	gone := newTestClient(h, 4)
	stays := newTestClient(h, 4)
	h.Register(gone)
	h.Register(stays)
	h.Unregister(gone)

	h.Broadcast(domain.DeleteQuestionEvent(1))

	drainOne(t, stays)
	_, open := <-gone.send
	assert.False(t, open)
}

func TestHub_UnserializableEventIsDropped(t *testing.T) {
	h := NewHub(testLogger())
	c := newTestClient(h, 4)
	h.Register(c)

	h.Broadcast(domain.Event{Type: domain.EventNewQuestion, Data: make(chan int)})

	assert.Empty(t, c.send)
	assert.Equal(t, 1, h.ClientCount(), "serialization failure must not disconnect anyone")
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub(testLogger())
	c1 := newTestClient(h, 1)
	c2 := newTestClient(h, 1)
	h.Register(c1)
	h.Register(c2)

	h.Shutdown()

	assert.Equal(t, 0, h.ClientCount())
	_, open := <-c1.send
	assert.False(t, open)
	_, open = <-c2.send
	assert.False(t, open)
}

func TestHub_ConcurrentRegisterBroadcastUnregister(t *testing.T) {
	h := NewHub(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient(h, 8)
			h.Register(c)
			h.Broadcast(domain.DeleteQuestionEvent(int64(1)))
			h.Unregister(c)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.ClientCount())
}
