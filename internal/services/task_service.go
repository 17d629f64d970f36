package services

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/access"
	"crm-backend/internal/cache"
	"crm-backend/internal/models"
)

type TaskStore interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateTaskRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskService struct {
	Repo        TaskStore
	Access      Authorizer
	Views       *cache.ViewCache
	Revalidator Revalidator
	Log         logrus.FieldLogger
}

func NewTaskService(repo TaskStore, authz Authorizer, views *cache.ViewCache, revalidator Revalidator, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		Repo:        repo,
		Access:      authz,
		Views:       views,
		Revalidator: revalidator,
		Log:         log,
	}
}

// ListTasks returns the project's board in creation order
func (s *TaskService) ListTasks(ctx context.Context, userID, projectID uuid.UUID) ([]models.Task, error) {
	if err := s.Access.Authorize(ctx, userID, access.KindProject, projectID); err != nil {
		return nil, err
	}

	key := cache.ViewKey(ProjectPath(projectID), userID.String(), "tasks")
	return cache.Remember(ctx, s.Views, key, func(ctx context.Context) ([]models.Task, error) {
		return s.Repo.ListByProject(ctx, projectID)
	})
}

func (s *TaskService) CreateTask(ctx context.Context, userID, projectID uuid.UUID, req *models.CreateTaskRequest) (*models.Task, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindProject, projectID); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
	if task.Status == "" {
		task.Status = models.TaskTodo
	}

	if err := s.Repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.Revalidator.Revalidate(ctx, ProjectPath(projectID))
	return task, nil
}

// UpdateTask applies a partial update; moving a card across the board sends only the status
func (s *TaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, req *models.UpdateTaskRequest) (*models.Task, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindTask, id); err != nil {
		return nil, err
	}

	if !req.Empty() {
		if err := s.Repo.Update(ctx, id, req); err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}

	task, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.Empty() {
		s.Revalidator.Revalidate(ctx, ProjectPath(task.ProjectID))
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Access.Authorize(ctx, userID, access.KindTask, id); err != nil {
		return err
	}

	task, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.Revalidator.Revalidate(ctx, ProjectPath(task.ProjectID))
	return nil
}
