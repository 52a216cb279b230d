package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/registry"
)

// HTTPHandler exposes the read-only presence API.
type HTTPHandler struct {
	registry registry.Registry
	hub      *hub.Hub
}

func NewHTTPHandler(reg registry.Registry, h *hub.Hub) *HTTPHandler {
	return &HTTPHandler{
		registry: reg,
		hub:      h,
	}
}

// PresenceResponse is the API response for a single user's presence.
type PresenceResponse struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

// RoomPresenceResponse is the API response for a room's member count.
type RoomPresenceResponse struct {
	RoomID  string `json:"room_id"`
	Members int    `json:"members"`
}

// OnlineResponse lists every user with a live connection.
type OnlineResponse struct {
	Users []string `json:"users"`
	Total int      `json:"total"`
}

// GetPresence handles GET /api/v1/presence/{user_id}
func (h *HTTPHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]

	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	_, online := h.registry.Lookup(userID)

	writeJSON(w, PresenceResponse{UserID: userID, Online: online})
}

// GetRoomPresence handles GET /api/v1/rooms/{room_id}/presence
func (h *HTTPHandler) GetRoomPresence(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["room_id"]

	if roomID == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, RoomPresenceResponse{RoomID: roomID, Members: h.hub.RoomSize(roomID)})
}

// GetOnline handles GET /api/v1/presence
func (h *HTTPHandler) GetOnline(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Snapshot()
	users := make([]string, 0, len(snapshot))
	for userID := range snapshot {
		users = append(users, userID)
	}

	writeJSON(w, OnlineResponse{Users: users, Total: len(users)})
}

func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/presence", h.GetOnline).Methods(http.MethodGet)
	api.HandleFunc("/presence/{user_id}", h.GetPresence).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/presence", h.GetRoomPresence).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
