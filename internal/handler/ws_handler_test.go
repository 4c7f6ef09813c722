package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
	"github.com/AnychainX/Live-Commerce-Chat/internal/hub"
)

// mockService records which handler was invoked and with what payload.
type mockService struct {
	calls []string
	last  interface{}
}

func (m *mockService) record(name string, payload interface{}) error {
	m.calls = append(m.calls, name)
	m.last = payload
	return nil
}

func (m *mockService) HandleListRooms(ctx context.Context, c *hub.Client) error {
	return m.record("list_rooms", nil)
}

func (m *mockService) HandleCreateRoom(ctx context.Context, c *hub.Client, ev domain.CreateRoomEvent) error {
	return m.record("create_room", ev)
}

func (m *mockService) HandleJoinRoom(ctx context.Context, c *hub.Client, ev domain.JoinRoomEvent) error {
	return m.record("join_room", ev)
}

func (m *mockService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	return m.record("leave_room", roomID)
}

func (m *mockService) HandleChatMessage(ctx context.Context, c *hub.Client, ev domain.ChatMessageEvent) error {
	return m.record("chat_message", ev)
}

func (m *mockService) HandleDeleteMessage(ctx context.Context, c *hub.Client, ev domain.DeleteMessageEvent) error {
	return m.record("delete_message", ev)
}

func (m *mockService) HandleReact(ctx context.Context, c *hub.Client, ev domain.ReactEvent) error {
	return m.record("react", ev)
}

func (m *mockService) HandleBanUser(ctx context.Context, c *hub.Client, ev domain.ModerateUserEvent) error {
	return m.record("ban_user", ev)
}

func (m *mockService) HandleUnbanUser(ctx context.Context, c *hub.Client, ev domain.ModerateUserEvent) error {
	return m.record("unban_user", ev)
}

func (m *mockService) HandleClearChat(ctx context.Context, c *hub.Client, roomID string) error {
	return m.record("clear_chat", roomID)
}

func (m *mockService) HandleSetSlowMode(ctx context.Context, c *hub.Client, ev domain.SetSlowModeEvent) error {
	return m.record("set_slow_mode", ev)
}

func (m *mockService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	return m.record("disconnect", nil)
}

func newTestSetup() (*WSHandler, *mockService, *hub.Client) {
	cfg := config.WebSocketConfig{MaxMessageSize: 4096}
	h := hub.NewHub(cfg)
	svc := &mockService{}
	handler := NewWSHandler(h, svc, cfg)
	client := hub.NewClient("conn-1", "client-1", h, nil, cfg)
	return handler, svc, client
}

func recvEvent(t *testing.T, c *hub.Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &got))
		return got
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHandleMessage_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCall string
		check    func(t *testing.T, last interface{})
	}{
		{
			name:     "list rooms",
			raw:      `{"type":"list_rooms"}`,
			wantCall: "list_rooms",
		},
		{
			name:     "create room",
			raw:      `{"type":"create_room","name":"drop","product":{"name":"bag"},"stream_url":"rtmp://x"}`,
			wantCall: "create_room",
			check: func(t *testing.T, last interface{}) {
				ev := last.(domain.CreateRoomEvent)
				assert.Equal(t, "drop", ev.Name)
				assert.Equal(t, "bag", ev.Product.Name)
			},
		},
		{
			name:     "join room",
			raw:      `{"type":"join_room","room_id":"r1","display_name":"Vera","host_key":"k"}`,
			wantCall: "join_room",
			check: func(t *testing.T, last interface{}) {
				ev := last.(domain.JoinRoomEvent)
				assert.Equal(t, "r1", ev.RoomID)
				assert.Equal(t, "Vera", ev.DisplayName)
				assert.Equal(t, "k", ev.HostKey)
			},
		},
		{
			name:     "leave room",
			raw:      `{"type":"leave_room","room_id":"r1"}`,
			wantCall: "leave_room",
			check: func(t *testing.T, last interface{}) {
				assert.Equal(t, "r1", last.(string))
			},
		},
		{
			name:     "chat message",
			raw:      `{"type":"chat_message","room_id":"r1","body":"hi","kind":"chat"}`,
			wantCall: "chat_message",
			check: func(t *testing.T, last interface{}) {
				ev := last.(domain.ChatMessageEvent)
				assert.Equal(t, "hi", ev.Body)
				assert.Equal(t, domain.KindChat, ev.Kind)
			},
		},
		{
			name:     "delete message",
			raw:      `{"type":"delete_message","room_id":"r1","message_id":"5-x"}`,
			wantCall: "delete_message",
		},
		{
			name:     "react",
			raw:      `{"type":"react","room_id":"r1","message_id":"5-x","symbol":"🔥"}`,
			wantCall: "react",
			check: func(t *testing.T, last interface{}) {
				assert.Equal(t, "🔥", last.(domain.ReactEvent).Symbol)
			},
		},
		{
			name:     "ban user",
			raw:      `{"type":"ban_user","room_id":"r1","target_id":"troll"}`,
			wantCall: "ban_user",
			check: func(t *testing.T, last interface{}) {
				assert.Equal(t, "troll", last.(domain.ModerateUserEvent).TargetID)
			},
		},
		{
			name:     "unban user",
			raw:      `{"type":"unban_user","room_id":"r1","target_id":"troll"}`,
			wantCall: "unban_user",
		},
		{
			name:     "clear chat",
			raw:      `{"type":"clear_chat","room_id":"r1"}`,
			wantCall: "clear_chat",
		},
		{
			name:     "set slow mode",
			raw:      `{"type":"set_slow_mode","room_id":"r1","enabled":true}`,
			wantCall: "set_slow_mode",
			check: func(t *testing.T, last interface{}) {
				assert.True(t, last.(domain.SetSlowModeEvent).Enabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc, client := newTestSetup()

			handler.handleMessage(client, []byte(tt.raw))

			require.Equal(t, []string{tt.wantCall}, svc.calls)
			if tt.check != nil {
				tt.check(t, svc.last)
			}
		})
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	handler, svc, client := newTestSetup()

	handler.handleMessage(client, []byte("{not json"))

	assert.Empty(t, svc.calls)
	ev := recvEvent(t, client)
	assert.Equal(t, domain.EvtError, ev["type"])
	assert.Equal(t, domain.ErrCodeBadRequest, ev["code"])
}

func TestHandleMessage_UnknownType(t *testing.T) {
	handler, svc, client := newTestSetup()

	handler.handleMessage(client, []byte(`{"type":"self_destruct"}`))

	assert.Empty(t, svc.calls)
	ev := recvEvent(t, client)
	assert.Equal(t, domain.EvtError, ev["type"])
	assert.Equal(t, domain.ErrCodeBadRequest, ev["code"])
}

func TestHandleMessage_Ping(t *testing.T) {
	handler, svc, client := newTestSetup()

	handler.handleMessage(client, []byte(`{"type":"ping"}`))

	assert.Empty(t, svc.calls)
	ev := recvEvent(t, client)
	assert.Equal(t, domain.EvtPong, ev["type"])
}
