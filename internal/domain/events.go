package domain

// Inbound event names.
const (
	EventJoinRoom           = "joinRoom"
	EventLeaveRoom          = "leaveRoom"
	EventSendGroupMessage   = "sendGroupMessage"
	EventSendPrivateMessage = "sendPrivateMessage"
	EventTyping             = "typing"
	EventNudge              = "nudge"
)

// Outbound event names.
const (
	EventUserJoined            = "userJoined"
	EventUserLeft              = "userLeft"
	EventReceiveGroupMessage   = "receiveGroupMessage"
	EventReceivePrivateMessage = "receivePrivateMessage"
	EventIsTyping              = "isTyping"
	EventNudgeReceived         = "nudgeReceived"
	EventError                 = "error"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseEvent carries the discriminator shared by all inbound frames.
type BaseEvent struct {
	Event string `json:"event"`
}

// Client -> Server events

type JoinRoomEvent struct {
	Event  string `json:"event"`
	RoomID string `json:"roomId"`
}

type LeaveRoomEvent struct {
	Event  string `json:"event"`
	RoomID string `json:"roomId"`
}

type SendGroupMessageEvent struct {
	Event    string `json:"event"`
	GroupID  string `json:"groupId"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}

type SendPrivateMessageEvent struct {
	Event      string `json:"event"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type TypingEvent struct {
	Event    string `json:"event"`
	RoomID   string `json:"roomId"`
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type NudgeEvent struct {
	Event        string `json:"event"`
	TargetUserID string `json:"targetUserId"`
}

// Server -> Client events

type UserJoinedEvent struct {
	Event   string `json:"event"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type UserLeftEvent struct {
	Event   string `json:"event"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type ReceiveGroupMessageEvent struct {
	Event    string `json:"event"`
	SenderID string `json:"senderId"`
	GroupID  string `json:"groupId"`
	Message  string `json:"message"`
}

type ReceivePrivateMessageEvent struct {
	Event      string `json:"event"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type IsTypingEvent struct {
	Event    string `json:"event"`
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type NudgeReceivedEvent struct {
	Event string `json:"event"`
	From  string `json:"from"`
}

type ErrorEvent struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Event:   EventError,
		Code:    code,
		Message: message,
	}
}
