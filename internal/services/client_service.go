package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/access"
	"crm-backend/internal/cache"
	"crm-backend/internal/models"
)

type ClientStore interface {
	List(ctx context.Context, userID uuid.UUID, query string) ([]models.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, c *models.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientService struct {
	Repo        ClientStore
	Access      Authorizer
	Views       *cache.ViewCache
	Revalidator Revalidator
	Log         logrus.FieldLogger
}

func NewClientService(repo ClientStore, authz Authorizer, views *cache.ViewCache, revalidator Revalidator, log logrus.FieldLogger) *ClientService {
	return &ClientService{
		Repo:        repo,
		Access:      authz,
		Views:       views,
		Revalidator: revalidator,
		Log:         log,
	}
}

// ListClients returns the user's clients, newest first. A non-empty query filters by name.
func (s *ClientService) ListClients(ctx context.Context, userID uuid.UUID, query string) ([]models.Client, error) {
	query = strings.TrimSpace(query)
	key := cache.ViewKey(PathClients, userID.String(), "q="+query)

	return cache.Remember(ctx, s.Views, key, func(ctx context.Context) ([]models.Client, error) {
		return s.Repo.List(ctx, userID, query)
	})
}

func (s *ClientService) GetClient(ctx context.Context, userID, id uuid.UUID) (*models.Client, error) {
	if err := s.Access.Authorize(ctx, userID, access.KindClient, id); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *ClientService) CreateClient(ctx context.Context, userID uuid.UUID, req *models.ClientRequest) (*models.Client, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	client := &models.Client{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	}

	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindClient)...)
	return client, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, userID, id uuid.UUID, req *models.ClientRequest) (*models.Client, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindClient, id); err != nil {
		return nil, err
	}

	client := &models.Client{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	}

	if err := s.Repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindClient)...)
	return client, nil
}

// DeleteClient removes the client together with its projects, tasks and invoices
func (s *ClientService) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Access.Authorize(ctx, userID, access.KindClient, id); err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindClient)...)
	return nil
}
