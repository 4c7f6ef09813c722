package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
	"github.com/AnychainX/Live-Commerce-Chat/internal/hub"
	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
	"github.com/AnychainX/Live-Commerce-Chat/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler decodes inbound protocol events and dispatches them to the chat
// service.
type WSHandler struct {
	hub     *hub.Hub
	service service.ChatService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

// HandleWebSocket upgrades the connection and starts the pumps. A client
// that reconnects presents its stable id in the client_id query parameter;
// otherwise the server issues one and announces it in a welcome event. Bans
// and host keys are keyed on that stable id, so they survive reconnects.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := logging.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	identity := r.URL.Query().Get("client_id")
	if identity == "" {
		identity = uuid.New().String()
	}

	client := hub.NewClient(uuid.New().String(), identity, h.hub, conn, h.wsCfg)

	h.hub.Register(client)
	client.SendMessage(&domain.WelcomeEvent{
		Type:     domain.EvtWelcome,
		ClientID: identity,
	})

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleMessage)
		h.service.HandleDisconnect(context.Background(), client)
	}()
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EvtListRooms:
		h.service.HandleListRooms(ctx, client)

	case domain.EvtCreateRoom:
		var ev domain.CreateRoomEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid create_room event"))
			return
		}
		h.service.HandleCreateRoom(ctx, client, ev)

	case domain.EvtJoinRoom:
		var ev domain.JoinRoomEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid join_room event"))
			return
		}
		h.service.HandleJoinRoom(ctx, client, ev)

	case domain.EvtLeaveRoom:
		var ev domain.LeaveRoomEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid leave_room event"))
			return
		}
		h.service.HandleLeaveRoom(ctx, client, ev.RoomID)

	case domain.EvtChatMessage:
		var ev domain.ChatMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid chat_message event"))
			return
		}
		h.service.HandleChatMessage(ctx, client, ev)

	case domain.EvtDeleteMessage:
		var ev domain.DeleteMessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid delete_message event"))
			return
		}
		h.service.HandleDeleteMessage(ctx, client, ev)

	case domain.EvtReact:
		var ev domain.ReactEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid react event"))
			return
		}
		h.service.HandleReact(ctx, client, ev)

	case domain.EvtBanUser:
		var ev domain.ModerateUserEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid ban_user event"))
			return
		}
		h.service.HandleBanUser(ctx, client, ev)

	case domain.EvtUnbanUser:
		var ev domain.ModerateUserEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid unban_user event"))
			return
		}
		h.service.HandleUnbanUser(ctx, client, ev)

	case domain.EvtClearChat:
		var ev domain.ClearChatEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid clear_chat event"))
			return
		}
		h.service.HandleClearChat(ctx, client, ev.RoomID)

	case domain.EvtSetSlowMode:
		var ev domain.SetSlowModeEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid set_slow_mode event"))
			return
		}
		h.service.HandleSetSlowMode(ctx, client, ev)

	case domain.EvtPing:
		client.SendMessage(map[string]string{"type": domain.EvtPong})

	default:
		client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type"))
	}
}
