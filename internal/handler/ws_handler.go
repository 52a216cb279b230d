package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/audit"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/auth"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/service"
	"github.com/Igorithmltd/muta-app-backend-sub001/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub      *hub.Hub
	service  service.RelayService
	verifier auth.TokenVerifier
	wsCfg    config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.RelayService, verifier auth.TokenVerifier, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		service:  svc,
		verifier: verifier,
		wsCfg:    wsCfg,
	}
}

// HandleWebSocket authenticates the handshake and hands the connection to
// the hub. The token travels as a query parameter; verification happens
// before the upgrade, so a rejected attempt never becomes a connection.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	identity, err := h.verifier.Verify(token)
	if err != nil {
		// One generic failure for missing, expired and malformed tokens.
		audit.LogWithDetail(r.Context(), audit.ActionAuthFailed, "", r.RemoteAddr, "authentication failed")
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), identity.UserID, h.hub, conn, h.wsCfg)

	h.hub.Register(client)
	h.service.HandleConnect(r.Context(), client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleClose)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid event format"))
		return
	}

	ctx := context.Background()

	switch base.Event {
	case domain.EventJoinRoom:
		var ev domain.JoinRoomEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandleJoinRoom(ctx, client, &ev))

	case domain.EventLeaveRoom:
		var ev domain.LeaveRoomEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandleLeaveRoom(ctx, client, &ev))

	case domain.EventSendGroupMessage:
		var ev domain.SendGroupMessageEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandleGroupMessage(ctx, client, &ev))

	case domain.EventSendPrivateMessage:
		var ev domain.SendPrivateMessageEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandlePrivateMessage(ctx, client, &ev))

	case domain.EventTyping:
		var ev domain.TypingEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandleTyping(ctx, client, &ev))

	case domain.EventNudge:
		var ev domain.NudgeEvent
		if !h.decode(client, message, &ev) {
			return
		}
		h.logHandlerErr(client, base.Event, h.service.HandleNudge(ctx, client, &ev))

	default:
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "unknown event"))
	}
}

func (h *WSHandler) handleClose(client *hub.Client) {
	h.service.HandleDisconnect(context.Background(), client)
}

// decode rejects a single malformed event without affecting the
// connection.
func (h *WSHandler) decode(client *hub.Client, message []byte, ev interface{}) bool {
	if err := json.Unmarshal(message, ev); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "invalid event payload"))
		return false
	}
	return true
}

func (h *WSHandler) logHandlerErr(client *hub.Client, event string, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		log.L().Error().Err(err).
			Str(log.FieldConnID, client.ID).
			Str(log.FieldEvent, event).
			Msg("event handler failed")
	}
}

func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
}
