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

type ProjectStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ProjectWithClient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ProjectWithClient, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateProjectRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectService struct {
	Repo        ProjectStore
	Access      Authorizer
	Views       *cache.ViewCache
	Revalidator Revalidator
	Log         logrus.FieldLogger
}

func NewProjectService(repo ProjectStore, authz Authorizer, views *cache.ViewCache, revalidator Revalidator, log logrus.FieldLogger) *ProjectService {
	return &ProjectService{
		Repo:        repo,
		Access:      authz,
		Views:       views,
		Revalidator: revalidator,
		Log:         log,
	}
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.ProjectWithClient, error) {
	key := cache.ViewKey(PathProjects, userID.String(), "all")

	return cache.Remember(ctx, s.Views, key, func(ctx context.Context) ([]models.ProjectWithClient, error) {
		return s.Repo.ListByUser(ctx, userID)
	})
}

func (s *ProjectService) GetProject(ctx context.Context, userID, id uuid.UUID) (*models.ProjectWithClient, error) {
	if err := s.Access.Authorize(ctx, userID, access.KindProject, id); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, req *models.CreateProjectRequest) (*models.Project, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindClient, req.ClientID); err != nil {
		return nil, err
	}

	project := &models.Project{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
	if project.Status == "" {
		project.Status = models.ProjectActive
	}

	if err := s.Repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindProject)...)
	return project, nil
}

// UpdateProject applies a partial update. Moving a project requires owning the target client too.
func (s *ProjectService) UpdateProject(ctx context.Context, userID, id uuid.UUID, req *models.UpdateProjectRequest) (*models.ProjectWithClient, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindProject, id); err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		if err := s.Access.Authorize(ctx, userID, access.KindClient, *req.ClientID); err != nil {
			return nil, err
		}
	}

	if !req.Empty() {
		if err := s.Repo.Update(ctx, id, req); err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
		s.Revalidator.Revalidate(ctx, viewsOf(access.KindProject, ProjectPath(id))...)
	}

	return s.Repo.Get(ctx, id)
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Access.Authorize(ctx, userID, access.KindProject, id); err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindProject, ProjectPath(id))...)
	return nil
}
