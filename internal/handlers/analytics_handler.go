package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
	Log     logrus.FieldLogger
}

func NewAnalyticsHandler(s *services.AnalyticsService, log logrus.FieldLogger) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s, Log: log}
}

func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	analytics, err := h.Service.GetAnalytics(ctx, userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, analytics)
}
