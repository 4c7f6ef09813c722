package domain

// WebSocket event types from client.
const (
	EvtListRooms     = "list_rooms"
	EvtCreateRoom    = "create_room"
	EvtJoinRoom      = "join_room"
	EvtLeaveRoom     = "leave_room"
	EvtChatMessage   = "chat_message"
	EvtDeleteMessage = "delete_message"
	EvtReact         = "react"
	EvtBanUser       = "ban_user"
	EvtUnbanUser     = "unban_user"
	EvtClearChat     = "clear_chat"
	EvtSetSlowMode   = "set_slow_mode"
	EvtPing          = "ping"
)

// WebSocket event types to client.
const (
	EvtWelcome        = "welcome"
	EvtRoomList       = "room_list"
	EvtRoomCreated    = "room_created"
	EvtRoomJoined     = "room_joined"
	EvtMessageDeleted = "message_deleted"
	EvtReactionUpdate = "reaction_update"
	EvtUserBanned     = "user_banned"
	EvtUserUnbanned   = "user_unbanned"
	EvtChatCleared    = "chat_cleared"
	EvtSlowMode       = "slow_mode"
	EvtViewerCount    = "viewer_count"
	EvtPong           = "pong"
	EvtError          = "error"
)

// Error codes carried by error events.
const (
	ErrCodeRoomNotFound = "ROOM_NOT_FOUND"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeNotInRoom    = "NOT_IN_ROOM"
	ErrCodeBadRequest   = "BAD_REQUEST"
)

// BaseEvent is the envelope every frame carries.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type CreateRoomEvent struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Product   Product `json:"product"`
	StreamURL string  `json:"stream_url"`
}

type JoinRoomEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	DisplayName string `json:"display_name"`
	HostKey     string `json:"host_key,omitempty"`
}

type LeaveRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type ChatMessageEvent struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id"`
	Body   string      `json:"body"`
	Kind   MessageKind `json:"kind"`
}

type DeleteMessageEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

type ReactEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	Symbol    string `json:"symbol"`
}

type ModerateUserEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	TargetID string `json:"target_id"`
}

type ClearChatEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type SetSlowModeEvent struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	Enabled bool   `json:"enabled"`
}

// Server -> Client events

type WelcomeEvent struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

type RoomListEvent struct {
	Type  string `json:"type"`
	Rooms []Room `json:"rooms"`
}

// RoomCreatedEvent is delivered only to the creator; HostKey is the
// server-issued credential required to claim the host role on join.
type RoomCreatedEvent struct {
	Type    string `json:"type"`
	Room    Room   `json:"room"`
	HostKey string `json:"host_key"`
}

type SlowModeConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

// RoomJoinedEvent is the join snapshot, delivered only to the joiner.
type RoomJoinedEvent struct {
	Type     string         `json:"type"`
	Room     Room           `json:"room"`
	Messages []*Message     `json:"messages"`
	Banned   []string       `json:"banned"`
	SlowMode SlowModeConfig `json:"slow_mode"`
	Self     Participant    `json:"self"`
}

type NewMessageEvent struct {
	Type    string   `json:"type"`
	RoomID  string   `json:"room_id"`
	Message *Message `json:"message"`
}

type MessageDeletedEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

type ReactionUpdateEvent struct {
	Type      string              `json:"type"`
	RoomID    string              `json:"room_id"`
	MessageID string              `json:"message_id"`
	Reactions map[string][]string `json:"reactions"`
}

type UserModeratedEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	TargetID string `json:"target_id"`
}

type ChatClearedEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type SlowModeEvent struct {
	Type   string         `json:"type"`
	RoomID string         `json:"room_id"`
	Config SlowModeConfig `json:"config"`
}

type ViewerCountEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Count  int    `json:"count"`
}

// ErrorEvent is always addressed to the requesting connection, never
// broadcast. RetryAfter is set only for RATE_LIMITED.
type ErrorEvent struct {
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EvtError,
		Code:    code,
		Message: message,
	}
}
