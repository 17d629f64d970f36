package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/models"
)

type UserStore interface {
	EnsureByEmail(ctx context.Context, email, name string) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name, email string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	Repo        UserStore
	Revalidator Revalidator
	Log         logrus.FieldLogger
}

func NewUserService(repo UserStore, revalidator Revalidator, log logrus.FieldLogger) *UserService {
	return &UserService{
		Repo:        repo,
		Revalidator: revalidator,
		Log:         log,
	}
}

// EnsureUser resolves the signed-in identity to a stored user, provisioning it on first sight
func (s *UserService) EnsureUser(ctx context.Context, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.Repo.EnsureByEmail(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.Repo.Get(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	current, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The email is the key sessions resolve against and stays fixed
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && email != current.Email {
		return nil, fmt.Errorf("%w: email is bound to the sign-in identity and cannot be changed", models.ErrInvalidInput)
	}

	user, err := s.Repo.Update(ctx, userID, strings.TrimSpace(req.Name), current.Email)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.Revalidator.Revalidate(ctx, PathSettings)
	return user, nil
}

// DeleteAccount removes the user and everything they own
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.Log.WithField("user_id", userID).Info("[Users] Account deleted")
	s.Revalidator.Revalidate(ctx, PathSettings, PathClients, PathProjects, PathInvoices, PathAnalytics)
	return nil
}
