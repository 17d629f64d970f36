package services

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/logger"
	"crm-backend/internal/models"
)

func TestTaskService_Board(t *testing.T) {
	store := &fakeTaskStore{tasks: map[uuid.UUID]models.Task{}}
	authz := newFakeAuthorizer()
	reval := &recordingRevalidator{}
	svc := NewTaskService(store, authz, nil, reval, logger.Discard())

	userID := uuid.Must(uuid.NewV4())
	projectID := uuid.Must(uuid.NewV4())
	authz.own(userID, projectID)

	task, err := svc.CreateTask(context.Background(), userID, projectID, &models.CreateTaskRequest{Name: "Wireframes"})
	require.NoError(t, err)
	require.Equal(t, models.TaskTodo, task.Status)
	require.Equal(t, projectID, task.ProjectID)
	authz.own(userID, task.ID)

	status := models.TaskInProgress
	moved, err := svc.UpdateTask(context.Background(), userID, task.ID, &models.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.TaskInProgress, moved.Status)
	require.Equal(t, "Wireframes", moved.Name)

	tasks, err := svc.ListTasks(context.Background(), userID, projectID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NoError(t, svc.DeleteTask(context.Background(), userID, task.ID))
	require.Empty(t, store.tasks)

	path := ProjectPath(projectID)
	require.Equal(t, []string{path, path, path}, reval.paths)
}

func TestTaskService_Rejects(t *testing.T) {
	store := &fakeTaskStore{tasks: map[uuid.UUID]models.Task{}}
	authz := newFakeAuthorizer()
	svc := NewTaskService(store, authz, nil, &recordingRevalidator{}, logger.Discard())

	userID := uuid.Must(uuid.NewV4())
	foreignProject := uuid.Must(uuid.NewV4())
	authz.own(uuid.Must(uuid.NewV4()), foreignProject)

	_, err := svc.CreateTask(context.Background(), userID, foreignProject, &models.CreateTaskRequest{Name: "x"})
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.ListTasks(context.Background(), userID, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, models.ErrNotFound)

	bogus := models.TaskStatus("blocked")
	_, err = svc.UpdateTask(context.Background(), userID, uuid.Must(uuid.NewV4()), &models.UpdateTaskRequest{Status: &bogus})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Empty(t, store.tasks)
}
