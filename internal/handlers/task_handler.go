package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type TaskHandler struct {
	Service *services.TaskService
	Log     logrus.FieldLogger
}

func NewTaskHandler(s *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{Service: s, Log: log}
}

// ListTasks serves /api/projects/{id}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tasks, err := h.Service.ListTasks(ctx, userID, projectID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	utils.JSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "project")
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Service.CreateTask(ctx, userID, projectID, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	task, err := h.Service.UpdateTask(ctx, userID, id, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.DeleteTask(ctx, userID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
