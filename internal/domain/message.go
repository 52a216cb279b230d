package domain

import (
	"sort"
	"strings"
	"time"
)

// MessageKind discriminates group from private messages.
type MessageKind string

const (
	KindGroup   MessageKind = "group"
	KindPrivate MessageKind = "private"
)

// Message is the record handed to the persistence gateway. Exactly one of
// GroupID/ReceiverID is set, matching Kind.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender"`
	ReceiverID string      `json:"receiver,omitempty"`
	GroupID    string      `json:"group,omitempty"`
	Body       string      `json:"message"`
	Kind       MessageKind `json:"type"`
	RoomID     string      `json:"room,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewGroupMessage builds a group message record.
func NewGroupMessage(id, senderID, groupID, body string) *Message {
	return &Message{
		ID:        id,
		SenderID:  senderID,
		GroupID:   groupID,
		Body:      body,
		Kind:      KindGroup,
		CreatedAt: time.Now().UTC(),
	}
}

// NewPrivateMessage builds a private message record. The room id is the
// deterministic pair room for the two participants.
func NewPrivateMessage(id, senderID, receiverID, body string) *Message {
	return &Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Kind:       KindPrivate,
		RoomID:     PrivateRoomID(senderID, receiverID),
		CreatedAt:  time.Now().UTC(),
	}
}

// FanoutRoom returns the room the message is delivered through: the group
// room for group messages, the pair room for private ones.
func (m *Message) FanoutRoom() string {
	if m.Kind == KindGroup {
		return m.GroupID
	}
	return m.RoomID
}

// PrivateRoomID computes the room identifier shared by two participants.
// The ids are sorted before joining so both sides resolve the same room
// regardless of who initiates.
func PrivateRoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
