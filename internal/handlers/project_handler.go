package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type ProjectHandler struct {
	Service *services.ProjectService
	Log     logrus.FieldLogger
}

func NewProjectHandler(s *services.ProjectService, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{Service: s, Log: log}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	projects, err := h.Service.ListProjects(ctx, userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if projects == nil {
		projects = []models.ProjectWithClient{}
	}

	utils.JSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	project, err := h.Service.CreateProject(ctx, userID, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	project, err := h.Service.GetProject(ctx, userID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, project)
}

// UpdateProject applies only the fields present in the body
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	project, err := h.Service.UpdateProject(ctx, userID, id, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.DeleteProject(ctx, userID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
