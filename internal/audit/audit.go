package audit

import (
	"context"

	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
)

// Audit actions for the chat backend. Moderation outcomes are the ones an
// operator cares about after the fact.
const (
	ActionCreateRoom    = "chat.create_room"
	ActionJoinRoom      = "chat.join_room"
	ActionLeaveRoom     = "chat.leave_room"
	ActionBanUser       = "chat.ban_user"
	ActionUnbanUser     = "chat.unban_user"
	ActionDeleteMessage = "chat.delete_message"
	ActionClearChat     = "chat.clear_chat"
	ActionSlowMode      = "chat.slow_mode"
	ActionDisconnect    = "chat.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, clientID, roomID, msg string) {
	l := logging.Ctx(ctx)
	l.Info().
		Str(logging.FieldLogType, logging.LogTypeAudit).
		Str(FieldAction, action).
		Str(logging.FieldClientID, clientID).
		Str(logging.FieldRoomID, roomID).
		Msg(msg)
}

// LogWithTarget emits an audit log for a moderation action aimed at another
// participant or message.
func LogWithTarget(ctx context.Context, action, clientID, roomID, targetID, msg string) {
	l := logging.Ctx(ctx)
	l.Info().
		Str(logging.FieldLogType, logging.LogTypeAudit).
		Str(FieldAction, action).
		Str(logging.FieldClientID, clientID).
		Str(logging.FieldRoomID, roomID).
		Str(logging.FieldTargetID, targetID).
		Msg(msg)
}
