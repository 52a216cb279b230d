package audit

import (
	"context"

	"github.com/Igorithmltd/muta-app-backend-sub001/pkg/log"
)

// Audit actions for the relay.
const (
	ActionAuth           = "relay.auth"
	ActionAuthFailed     = "relay.auth_failed"
	ActionJoinRoom       = "relay.join_room"
	ActionLeaveRoom      = "relay.leave_room"
	ActionGroupMessage   = "relay.group_message"
	ActionPrivateMessage = "relay.private_message"
	ActionNudge          = "relay.nudge"
	ActionDisconnect     = "relay.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
