package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type ClientHandler struct {
	Service *services.ClientService
	Log     logrus.FieldLogger
}

func NewClientHandler(s *services.ClientService, log logrus.FieldLogger) *ClientHandler {
	return &ClientHandler{Service: s, Log: log}
}

// ListClients returns the user's clients; ?q= filters by name
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clients, err := h.Service.ListClients(ctx, userID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	utils.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	client, err := h.Service.CreateClient(ctx, userID, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	client, err := h.Service.GetClient(ctx, userID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}

	var req models.ClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	client, err := h.Service.UpdateClient(ctx, userID, id, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.DeleteClient(ctx, userID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
