package handlers

import (
	"net/http"

	"crm-backend/internal/realtime"
)

// RealtimeHandler upgrades dashboard connections that listen for revalidation events
type RealtimeHandler struct {
	Hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.Hub.ServeWS(w, r, userID)
}
