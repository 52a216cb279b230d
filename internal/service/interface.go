package service

import (
	"context"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
)

// RelayService routes inbound client events: it validates payloads,
// performs the side effect (persist, membership change) and emits the
// outbound events to the right set of live connections.
type RelayService interface {
	// HandleConnect records the authenticated user's live connection.
	HandleConnect(ctx context.Context, c *hub.Client)

	// HandleJoinRoom joins the room, then announces the arrival to it.
	HandleJoinRoom(ctx context.Context, c *hub.Client, ev *domain.JoinRoomEvent) error

	// HandleLeaveRoom leaves the room, then announces the departure to it.
	HandleLeaveRoom(ctx context.Context, c *hub.Client, ev *domain.LeaveRoomEvent) error

	// HandleGroupMessage persists a group message and, on success, fans it
	// out to the group room.
	HandleGroupMessage(ctx context.Context, c *hub.Client, ev *domain.SendGroupMessageEvent) error

	// HandlePrivateMessage persists a private message and, on success,
	// delivers it directly to each online participant.
	HandlePrivateMessage(ctx context.Context, c *hub.Client, ev *domain.SendPrivateMessageEvent) error

	// HandleTyping relays a typing indicator to the room, sender included.
	HandleTyping(ctx context.Context, c *hub.Client, ev *domain.TypingEvent) error

	// HandleNudge pings the target user if they are online; otherwise a
	// silent no-op.
	HandleNudge(ctx context.Context, c *hub.Client, ev *domain.NudgeEvent) error

	// HandleDisconnect announces the departure to every joined room and
	// removes the registry entry if it still belongs to this connection.
	HandleDisconnect(ctx context.Context, c *hub.Client)
}
