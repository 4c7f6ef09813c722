package service

import (
	"context"
	"errors"
	"sync"

	"github.com/AnychainX/Live-Commerce-Chat/internal/audit"
	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
	"github.com/AnychainX/Live-Commerce-Chat/internal/hub"
	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
	"github.com/AnychainX/Live-Commerce-Chat/internal/room"
)

type chatService struct {
	registry *room.Registry
	hub      *hub.Hub

	// Per-room serialization point: held across mutate + broadcast enqueue
	// so the order of events on the hub channel matches the order the room
	// accepted the operations.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatService(registry *room.Registry, h *hub.Hub) ChatService {
	return &chatService{
		registry: registry,
		hub:      h,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *chatService) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[roomID] = l
	}
	return l
}

// sendOpError converts a room error into exactly one error event addressed
// to the requesting connection. Errors are never broadcast and never fatal
// to the connection.
func (s *chatService) sendOpError(client *hub.Client, err error) error {
	var rle *room.RateLimitError
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return client.SendMessage(domain.NewErrorEvent(domain.ErrCodeRoomNotFound, "room not found"))
	case errors.Is(err, room.ErrNotInRoom):
		return client.SendMessage(domain.NewErrorEvent(domain.ErrCodeNotInRoom, "join the room first"))
	case errors.Is(err, room.ErrBanned):
		return client.SendMessage(domain.NewErrorEvent(domain.ErrCodeForbidden, "banned"))
	case errors.Is(err, room.ErrHostOnly):
		return client.SendMessage(domain.NewErrorEvent(domain.ErrCodeForbidden, err.Error()))
	case errors.As(err, &rle):
		ev := domain.NewErrorEvent(domain.ErrCodeRateLimited, err.Error())
		ev.RetryAfter = rle.RemainingSeconds()
		return client.SendMessage(ev)
	default:
		return client.SendMessage(domain.NewErrorEvent(domain.ErrCodeBadRequest, err.Error()))
	}
}

func (s *chatService) HandleListRooms(ctx context.Context, client *hub.Client) error {
	return client.SendMessage(&domain.RoomListEvent{
		Type:  domain.EvtRoomList,
		Rooms: s.registry.List(),
	})
}

func (s *chatService) HandleCreateRoom(ctx context.Context, client *hub.Client, ev domain.CreateRoomEvent) error {
	st, hostKey := s.registry.Create(room.CreateSpec{
		Name:         ev.Name,
		Product:      ev.Product,
		StreamURL:    ev.StreamURL,
		HostClientID: client.Identity,
	})

	audit.Log(ctx, audit.ActionCreateRoom, client.Identity, st.ID(), "room created")

	// Host key goes to the creator only; it is the credential for the host
	// role on join.
	return client.SendMessage(&domain.RoomCreatedEvent{
		Type:    domain.EvtRoomCreated,
		Room:    st.Snapshot(),
		HostKey: hostKey,
	})
}

func (s *chatService) HandleJoinRoom(ctx context.Context, client *hub.Client, ev domain.JoinRoomEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	snap := st.Join(client.Identity, ev.DisplayName, ev.HostKey)
	s.hub.Subscribe(client, ev.RoomID)
	client.JoinedRoom(ev.RoomID)
	s.hub.BroadcastToRoom(ev.RoomID, &domain.ViewerCountEvent{
		Type:   domain.EvtViewerCount,
		RoomID: ev.RoomID,
		Count:  snap.Room.ViewerCount,
	}, "")
	l.Unlock()

	audit.Log(ctx, audit.ActionJoinRoom, client.Identity, ev.RoomID, "client joined room")

	return client.SendMessage(&domain.RoomJoinedEvent{
		Type:     domain.EvtRoomJoined,
		Room:     snap.Room,
		Messages: snap.Messages,
		Banned:   snap.Banned,
		SlowMode: snap.SlowMode,
		Self:     snap.Self,
	})
}

func (s *chatService) HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error {
	st, err := s.registry.Get(roomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	s.leaveRoom(st, client, roomID)
	audit.Log(ctx, audit.ActionLeaveRoom, client.Identity, roomID, "client left room")
	return nil
}

// leaveRoom is shared between an explicit leave and connection loss. It is
// idempotent; the viewer count is only re-broadcast when the roster changed.
func (s *chatService) leaveRoom(st *room.State, client *hub.Client, roomID string) {
	l := s.roomLock(roomID)
	l.Lock()
	defer l.Unlock()

	count, left := st.Leave(client.Identity)
	s.hub.Unsubscribe(client, roomID)
	client.LeftRoom(roomID)
	if left {
		s.hub.BroadcastToRoom(roomID, &domain.ViewerCountEvent{
			Type:   domain.EvtViewerCount,
			RoomID: roomID,
			Count:  count,
		}, "")
	}
}

func (s *chatService) HandleChatMessage(ctx context.Context, client *hub.Client, ev domain.ChatMessageEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	msg, err := st.Send(client.Identity, ev.Body, ev.Kind)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	s.hub.BroadcastToRoom(ev.RoomID, &domain.NewMessageEvent{
		Type:    domain.EvtChatMessage,
		RoomID:  ev.RoomID,
		Message: msg,
	}, "")
	l.Unlock()

	log := logging.Ctx(ctx)
	log.Debug().
		Str(logging.FieldClientID, client.Identity).
		Str(logging.FieldRoomID, ev.RoomID).
		Str(logging.FieldMessageID, msg.ID).
		Msg("message sent")
	return nil
}

func (s *chatService) HandleDeleteMessage(ctx context.Context, client *hub.Client, ev domain.DeleteMessageEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	deleted, err := st.Delete(client.Identity, ev.MessageID)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	if deleted {
		// The broadcast carries only the id, never the original body.
		s.hub.BroadcastToRoom(ev.RoomID, &domain.MessageDeletedEvent{
			Type:      domain.EvtMessageDeleted,
			RoomID:    ev.RoomID,
			MessageID: ev.MessageID,
		}, "")
	}
	l.Unlock()

	if deleted {
		audit.LogWithTarget(ctx, audit.ActionDeleteMessage, client.Identity, ev.RoomID, ev.MessageID, "message deleted")
	}
	return nil
}

func (s *chatService) HandleReact(ctx context.Context, client *hub.Client, ev domain.ReactEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	defer l.Unlock()
	reactions, ok, err := st.React(client.Identity, ev.MessageID, ev.Symbol)
	if err != nil {
		return s.sendOpError(client, err)
	}
	if !ok {
		return nil
	}
	return s.hub.BroadcastToRoom(ev.RoomID, &domain.ReactionUpdateEvent{
		Type:      domain.EvtReactionUpdate,
		RoomID:    ev.RoomID,
		MessageID: ev.MessageID,
		Reactions: reactions,
	}, "")
}

func (s *chatService) HandleBanUser(ctx context.Context, client *hub.Client, ev domain.ModerateUserEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	err = st.Ban(client.Identity, ev.TargetID)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	s.hub.BroadcastToRoom(ev.RoomID, &domain.UserModeratedEvent{
		Type:     domain.EvtUserBanned,
		RoomID:   ev.RoomID,
		TargetID: ev.TargetID,
	}, "")
	l.Unlock()

	audit.LogWithTarget(ctx, audit.ActionBanUser, client.Identity, ev.RoomID, ev.TargetID, "user banned")
	return nil
}

func (s *chatService) HandleUnbanUser(ctx context.Context, client *hub.Client, ev domain.ModerateUserEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	err = st.Unban(client.Identity, ev.TargetID)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	s.hub.BroadcastToRoom(ev.RoomID, &domain.UserModeratedEvent{
		Type:     domain.EvtUserUnbanned,
		RoomID:   ev.RoomID,
		TargetID: ev.TargetID,
	}, "")
	l.Unlock()

	audit.LogWithTarget(ctx, audit.ActionUnbanUser, client.Identity, ev.RoomID, ev.TargetID, "user unbanned")
	return nil
}

func (s *chatService) HandleClearChat(ctx context.Context, client *hub.Client, roomID string) error {
	st, err := s.registry.Get(roomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(roomID)
	l.Lock()
	err = st.ClearChat(client.Identity)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	s.hub.BroadcastToRoom(roomID, &domain.ChatClearedEvent{
		Type:   domain.EvtChatCleared,
		RoomID: roomID,
	}, "")
	l.Unlock()

	audit.Log(ctx, audit.ActionClearChat, client.Identity, roomID, "chat log cleared")
	return nil
}

func (s *chatService) HandleSetSlowMode(ctx context.Context, client *hub.Client, ev domain.SetSlowModeEvent) error {
	st, err := s.registry.Get(ev.RoomID)
	if err != nil {
		return s.sendOpError(client, err)
	}

	l := s.roomLock(ev.RoomID)
	l.Lock()
	cfg, err := st.SetSlowMode(client.Identity, ev.Enabled)
	if err != nil {
		l.Unlock()
		return s.sendOpError(client, err)
	}
	s.hub.BroadcastToRoom(ev.RoomID, &domain.SlowModeEvent{
		Type:   domain.EvtSlowMode,
		RoomID: ev.RoomID,
		Config: cfg,
	}, "")
	l.Unlock()

	audit.Log(ctx, audit.ActionSlowMode, client.Identity, ev.RoomID, "slow mode changed")
	return nil
}

// HandleDisconnect runs the leave path for every room the connection was a
// member of. Connection loss is the only cancellation signal in the system.
func (s *chatService) HandleDisconnect(ctx context.Context, client *hub.Client) error {
	for _, roomID := range client.Rooms() {
		st, err := s.registry.Get(roomID)
		if err != nil {
			continue
		}
		s.leaveRoom(st, client, roomID)
	}
	audit.Log(ctx, audit.ActionDisconnect, client.Identity, "", "client disconnected")
	return nil
}
