package service

import (
	"context"

	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
	"github.com/AnychainX/Live-Commerce-Chat/internal/hub"
)

// ChatService routes decoded protocol events to room operations and turns
// the results into outbound events: errors to the requester only, state
// changes to every connection subscribed to the room.
type ChatService interface {
	HandleListRooms(ctx context.Context, client *hub.Client) error
	HandleCreateRoom(ctx context.Context, client *hub.Client, ev domain.CreateRoomEvent) error
	HandleJoinRoom(ctx context.Context, client *hub.Client, ev domain.JoinRoomEvent) error
	HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleChatMessage(ctx context.Context, client *hub.Client, ev domain.ChatMessageEvent) error
	HandleDeleteMessage(ctx context.Context, client *hub.Client, ev domain.DeleteMessageEvent) error
	HandleReact(ctx context.Context, client *hub.Client, ev domain.ReactEvent) error
	HandleBanUser(ctx context.Context, client *hub.Client, ev domain.ModerateUserEvent) error
	HandleUnbanUser(ctx context.Context, client *hub.Client, ev domain.ModerateUserEvent) error
	HandleClearChat(ctx context.Context, client *hub.Client, roomID string) error
	HandleSetSlowMode(ctx context.Context, client *hub.Client, ev domain.SetSlowModeEvent) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
}
