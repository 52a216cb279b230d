package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/audit"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/cache"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/registry"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/store"
	"github.com/Igorithmltd/muta-app-backend-sub001/pkg/log"
)

type relayService struct {
	hub      *hub.Hub
	registry registry.Registry
	store    store.MessageStore
	cache    *cache.RecentMessageCache // optional
}

func NewRelayService(
	h *hub.Hub,
	reg registry.Registry,
	st store.MessageStore,
	recent *cache.RecentMessageCache,
) RelayService {
	return &relayService{
		hub:      h,
		registry: reg,
		store:    st,
		cache:    recent,
	}
}

func (s *relayService) HandleConnect(ctx context.Context, c *hub.Client) {
	// Last connection wins. The superseded connection, if any, stays
	// open but loses direct delivery.
	s.registry.Register(c.UserID, c.ID)
	audit.Log(ctx, audit.ActionAuth, c.UserID, "user connected")
}

func (s *relayService) HandleJoinRoom(ctx context.Context, c *hub.Client, ev *domain.JoinRoomEvent) error {
	if ev.RoomID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "roomId is required"))
	}

	s.hub.JoinRoom(c, ev.RoomID)

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, c.UserID, ev.RoomID, "joined room")

	return s.hub.BroadcastToRoom(ev.RoomID, &domain.UserJoinedEvent{
		Event:   domain.EventUserJoined,
		UserID:  c.UserID,
		Message: fmt.Sprintf("%s has joined the room", c.UserID),
	}, "")
}

func (s *relayService) HandleLeaveRoom(ctx context.Context, c *hub.Client, ev *domain.LeaveRoomEvent) error {
	if ev.RoomID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "roomId is required"))
	}

	s.hub.LeaveRoom(c, ev.RoomID)

	audit.LogWithDetail(ctx, audit.ActionLeaveRoom, c.UserID, ev.RoomID, "left room")

	return s.hub.BroadcastToRoom(ev.RoomID, &domain.UserLeftEvent{
		Event:   domain.EventUserLeft,
		UserID:  c.UserID,
		Message: fmt.Sprintf("%s has left the room", c.UserID),
	}, "")
}

func (s *relayService) HandleGroupMessage(ctx context.Context, c *hub.Client, ev *domain.SendGroupMessageEvent) error {
	if ev.GroupID == "" || ev.Message == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "groupId and message are required"))
	}
	if ev.SenderID != "" && ev.SenderID != c.UserID {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeForbidden, "senderId does not match the authenticated user"))
	}

	msg := domain.NewGroupMessage(uuid.New().String(), c.UserID, ev.GroupID, ev.Message)

	if err := s.store.Append(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, ev.GroupID).Msg("failed to persist group message")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to send message"))
	}

	s.cacheRecent(ctx, msg)
	audit.LogWithDetail(ctx, audit.ActionGroupMessage, c.UserID, ev.GroupID, "group message sent")

	return s.hub.BroadcastToRoom(ev.GroupID, &domain.ReceiveGroupMessageEvent{
		Event:    domain.EventReceiveGroupMessage,
		SenderID: c.UserID,
		GroupID:  ev.GroupID,
		Message:  ev.Message,
	}, "")
}

func (s *relayService) HandlePrivateMessage(ctx context.Context, c *hub.Client, ev *domain.SendPrivateMessageEvent) error {
	if ev.ReceiverID == "" || ev.Message == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "receiverId and message are required"))
	}
	if ev.SenderID != "" && ev.SenderID != c.UserID {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeForbidden, "senderId does not match the authenticated user"))
	}

	msg := domain.NewPrivateMessage(uuid.New().String(), c.UserID, ev.ReceiverID, ev.Message)

	if err := s.store.Append(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, msg.RoomID).Msg("failed to persist private message")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "failed to send message"))
	}

	s.cacheRecent(ctx, msg)
	audit.LogWithDetail(ctx, audit.ActionPrivateMessage, c.UserID, ev.ReceiverID, "private message sent")

	// Targeted delivery, not room broadcast: each participant that has a
	// live registry entry gets exactly one copy. The sender hears its own
	// message echoed back.
	out := &domain.ReceivePrivateMessageEvent{
		Event:      domain.EventReceivePrivateMessage,
		SenderID:   c.UserID,
		ReceiverID: ev.ReceiverID,
		Message:    ev.Message,
	}
	for _, userID := range []string{c.UserID, ev.ReceiverID} {
		connID, ok := s.registry.Lookup(userID)
		if !ok {
			continue
		}
		s.hub.SendToConn(connID, out)
	}

	return nil
}

func (s *relayService) HandleTyping(ctx context.Context, c *hub.Client, ev *domain.TypingEvent) error {
	if ev.RoomID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "roomId is required"))
	}
	if ev.SenderID != "" && ev.SenderID != c.UserID {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeForbidden, "senderId does not match the authenticated user"))
	}

	return s.hub.BroadcastToRoom(ev.RoomID, &domain.IsTypingEvent{
		Event:    domain.EventIsTyping,
		SenderID: c.UserID,
		IsTyping: ev.IsTyping,
	}, "")
}

func (s *relayService) HandleNudge(ctx context.Context, c *hub.Client, ev *domain.NudgeEvent) error {
	if ev.TargetUserID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "targetUserId is required"))
	}

	connID, ok := s.registry.Lookup(ev.TargetUserID)
	if !ok {
		// Offline target: best-effort, no error.
		return nil
	}

	audit.LogWithDetail(ctx, audit.ActionNudge, c.UserID, ev.TargetUserID, "nudge sent")

	s.hub.SendToConn(connID, &domain.NudgeReceivedEvent{
		Event: domain.EventNudgeReceived,
		From:  c.UserID,
	})
	return nil
}

func (s *relayService) HandleDisconnect(ctx context.Context, c *hub.Client) {
	for _, roomID := range s.hub.Rooms(c.ID) {
		if err := s.hub.BroadcastToRoom(roomID, &domain.UserLeftEvent{
			Event:   domain.EventUserLeft,
			UserID:  c.UserID,
			Message: fmt.Sprintf("%s has left the room", c.UserID),
		}, c.ID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to announce departure")
		}
	}

	// Only evict the entry this connection owns; a newer session for the
	// same user keeps its registration.
	if s.registry.Unregister(c.UserID, c.ID) {
		audit.Log(ctx, audit.ActionDisconnect, c.UserID, "user disconnected")
	}
}

func (s *relayService) cacheRecent(ctx context.Context, msg *domain.Message) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Push(ctx, msg); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to cache recent message")
	}
}
