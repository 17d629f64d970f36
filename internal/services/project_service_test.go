package services

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/logger"
	"crm-backend/internal/models"
)

type fakeProjectStore struct {
	projects map[uuid.UUID]models.Project
	updates  int
}

func (f *fakeProjectStore) ListByUser(context.Context, uuid.UUID) ([]models.ProjectWithClient, error) {
	var out []models.ProjectWithClient
	for _, p := range f.projects {
		out = append(out, models.ProjectWithClient{Project: p})
	}
	return out, nil
}

func (f *fakeProjectStore) Get(_ context.Context, id uuid.UUID) (*models.ProjectWithClient, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.ProjectWithClient{Project: p, ClientName: "Acme"}, nil
}

func (f *fakeProjectStore) Create(_ context.Context, p *models.Project) error {
	p.ID = uuid.Must(uuid.NewV4())
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeProjectStore) Update(_ context.Context, id uuid.UUID, req *models.UpdateProjectRequest) error {
	p := f.projects[id]
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.ClientID != nil {
		p.ClientID = *req.ClientID
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	f.projects[id] = p
	f.updates++
	return nil
}

func (f *fakeProjectStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

func newProjectFixture() (*ProjectService, *fakeProjectStore, *fakeAuthorizer, *recordingRevalidator) {
	store := &fakeProjectStore{projects: map[uuid.UUID]models.Project{}}
	authz := newFakeAuthorizer()
	reval := &recordingRevalidator{}
	return NewProjectService(store, authz, nil, reval, logger.Discard()), store, authz, reval
}

func TestProjectService_CreateDefaultsToActive(t *testing.T) {
	svc, _, authz, reval := newProjectFixture()
	userID := uuid.Must(uuid.NewV4())
	clientID := uuid.Must(uuid.NewV4())
	authz.own(userID, clientID)

	due := "2024-06-30"
	project, err := svc.CreateProject(context.Background(), userID, &models.CreateProjectRequest{
		Name:     "Website",
		ClientID: clientID,
		DueDate:  &due,
	})
	require.NoError(t, err)
	require.Equal(t, models.ProjectActive, project.Status)
	require.Equal(t, &due, project.DueDate)
	require.Equal(t, []string{PathProjects, PathInvoices, PathAnalytics}, reval.paths)

	bad := "30/06/2024"
	_, err = svc.CreateProject(context.Background(), userID, &models.CreateProjectRequest{Name: "x", ClientID: clientID, DueDate: &bad})
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestProjectService_CreateForeignClient(t *testing.T) {
	svc, store, authz, _ := newProjectFixture()
	clientID := uuid.Must(uuid.NewV4())
	authz.own(uuid.Must(uuid.NewV4()), clientID)

	_, err := svc.CreateProject(context.Background(), uuid.Must(uuid.NewV4()), &models.CreateProjectRequest{Name: "x", ClientID: clientID})
	require.ErrorIs(t, err, models.ErrForbidden)
	require.Empty(t, store.projects)
}

func TestProjectService_Update(t *testing.T) {
	svc, store, authz, reval := newProjectFixture()
	userID := uuid.Must(uuid.NewV4())
	clientID := uuid.Must(uuid.NewV4())
	foreignClient := uuid.Must(uuid.NewV4())
	authz.own(userID, clientID)
	authz.own(uuid.Must(uuid.NewV4()), foreignClient)

	project, err := svc.CreateProject(context.Background(), userID, &models.CreateProjectRequest{Name: "Website", ClientID: clientID})
	require.NoError(t, err)
	authz.own(userID, project.ID)
	reval.paths = nil

	_, err = svc.UpdateProject(context.Background(), userID, project.ID, &models.UpdateProjectRequest{ClientID: &foreignClient})
	require.ErrorIs(t, err, models.ErrForbidden)
	require.Equal(t, clientID, store.projects[project.ID].ClientID)

	got, err := svc.UpdateProject(context.Background(), userID, project.ID, &models.UpdateProjectRequest{})
	require.NoError(t, err)
	require.Equal(t, "Website", got.Name)
	require.Zero(t, store.updates)
	require.Empty(t, reval.paths)

	status := models.ProjectCompleted
	got, err = svc.UpdateProject(context.Background(), userID, project.ID, &models.UpdateProjectRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.ProjectCompleted, got.Status)
	require.Equal(t, []string{PathProjects, PathInvoices, PathAnalytics, ProjectPath(project.ID)}, reval.paths)
}
