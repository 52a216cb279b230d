package log

const (
	// Connection
	FieldConnID   = "conn_id"
	FieldRemoteIP = "remote_ip"

	// Actor
	FieldUserID = "user_id"

	// Relay
	FieldRoomID = "room_id"
	FieldEvent  = "event"
	FieldTarget = "target_user_id"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
