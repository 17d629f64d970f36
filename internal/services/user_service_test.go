package services

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/logger"
	"crm-backend/internal/models"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) EnsureByEmail(_ context.Context, email, name string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.Must(uuid.NewV4()), Email: email, Name: name}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserStore) Update(_ context.Context, id uuid.UUID, name, email string) (*models.User, error) {
	u, err := f.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	u.Name, u.Email = name, email
	return u, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	for k, u := range f.users {
		if u.ID == id {
			delete(f.users, k)
			return nil
		}
	}
	return models.ErrNotFound
}

func TestUserService_EnsureUser(t *testing.T) {
	svc := NewUserService(&fakeUserStore{users: map[string]*models.User{}}, &recordingRevalidator{}, logger.Discard())

	first, err := svc.EnsureUser(context.Background(), "  Jane@Example.COM ", "Jane")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", first.Email)

	again, err := svc.EnsureUser(context.Background(), "jane@example.com", "")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	_, err = svc.EnsureUser(context.Background(), "   ", "nobody")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestUserService_Profile(t *testing.T) {
	reval := &recordingRevalidator{}
	svc := NewUserService(&fakeUserStore{users: map[string]*models.User{}}, reval, logger.Discard())

	user, err := svc.EnsureUser(context.Background(), "jane@example.com", "Jane")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{Name: "Jane", Email: "jane"})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{Name: "Jane", Email: "Jane.Doe@Example.com"})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Empty(t, reval.paths)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{Name: " Jane Doe ", Email: "Jane@Example.com"})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", updated.Name)
	require.Equal(t, "jane@example.com", updated.Email)

	updated, err = svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{Name: "J. Doe"})
	require.NoError(t, err)
	require.Equal(t, "J. Doe", updated.Name)
	require.Equal(t, "jane@example.com", updated.Email)
	require.Equal(t, []string{PathSettings, PathSettings}, reval.paths)

	again, err := svc.EnsureUser(context.Background(), "jane@example.com", "Jane")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))
	_, err = svc.GetProfile(context.Background(), user.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}
