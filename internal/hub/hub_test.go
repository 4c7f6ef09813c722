package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

func newRunningHub() *Hub {
	h := NewHub(testWSConfig())
	go h.Run()
	return h
}

// newTestClient builds a client without a websocket connection; tests read
// its Send channel directly.
func newTestClient(h *Hub, connID, identity string) *Client {
	return NewClient(connID, identity, h, nil, testWSConfig())
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNothingQueued(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event queued: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	b := newTestClient(h, "conn-b", "client-b")
	c := newTestClient(h, "conn-c", "client-c")

	h.Register(a)
	h.Register(b)
	h.Register(c)

	h.Subscribe(a, "room-1")
	h.Subscribe(b, "room-1")
	h.Subscribe(c, "room-2")

	require.NoError(t, h.BroadcastToRoom("room-1", map[string]string{"type": "hello"}, ""))

	for _, cl := range []*Client{a, b} {
		var got map[string]string
		require.NoError(t, json.Unmarshal(recv(t, cl), &got))
		assert.Equal(t, "hello", got["type"])
	}
	assertNothingQueued(t, c)
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	b := newTestClient(h, "conn-b", "client-b")

	h.Register(a)
	h.Register(b)
	h.Subscribe(a, "room-1")
	h.Subscribe(b, "room-1")

	require.NoError(t, h.BroadcastToRoom("room-1", map[string]string{"type": "hello"}, "conn-a"))

	recv(t, b)
	assertNothingQueued(t, a)
}

func TestHub_BroadcastOrderPreserved(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	h.Register(a)
	h.Subscribe(a, "room-1")

	for i := 0; i < 10; i++ {
		require.NoError(t, h.BroadcastToRoom("room-1", map[string]int{"n": i}, ""))
	}

	for i := 0; i < 10; i++ {
		var got map[string]int
		require.NoError(t, json.Unmarshal(recv(t, a), &got))
		assert.Equal(t, i, got["n"])
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	h.Register(a)
	h.Subscribe(a, "room-1")
	require.Equal(t, 1, h.RoomClientCount("room-1"))

	h.Unsubscribe(a, "room-1")
	assert.Equal(t, 0, h.RoomClientCount("room-1"))

	require.NoError(t, h.BroadcastToRoom("room-1", map[string]string{"type": "hello"}, ""))
	assertNothingQueued(t, a)
}

func TestHub_UnregisterClosesSendAndLeavesRooms(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	h.Register(a)
	h.Subscribe(a, "room-1")
	h.Subscribe(a, "room-2")

	h.Unregister(a)

	select {
	case _, ok := <-a.Send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	assert.Equal(t, 0, h.RoomClientCount("room-1"))
	assert.Equal(t, 0, h.RoomClientCount("room-2"))
}

func TestClient_SendMessageAfterUnregisterIsNoOp(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	h.Register(a)
	h.Subscribe(a, "room-1")

	h.Unregister(a)
	select {
	case _, ok := <-a.Send:
		require.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	assert.NotPanics(t, func() {
		require.NoError(t, a.SendMessage(map[string]string{"type": "hello"}))
	})
}

// A dropped connection can still be inside SendMessage while the hub closes
// its channel; the close must never turn those sends into panics. Run with
// -race.
func TestClient_SendMessageRacesCloseSend(t *testing.T) {
	h := newRunningHub()

	a := newTestClient(h, "conn-a", "client-a")
	h.Register(a)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = a.SendMessage(map[string]int{"n": i})
		}
	}()

	h.Unregister(a)
	<-done
}

func TestClient_RoomTracking(t *testing.T) {
	h := NewHub(testWSConfig())
	a := newTestClient(h, "conn-a", "client-a")

	assert.Empty(t, a.Rooms())

	a.JoinedRoom("room-1")
	a.JoinedRoom("room-2")
	assert.True(t, a.InRoom("room-1"))
	assert.ElementsMatch(t, []string{"room-1", "room-2"}, a.Rooms())

	a.LeftRoom("room-1")
	assert.False(t, a.InRoom("room-1"))
	assert.ElementsMatch(t, []string{"room-2"}, a.Rooms())
}
