package services

import (
	"context"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/access"
	"crm-backend/internal/cache"
	"crm-backend/internal/logger"
	"crm-backend/internal/models"
)

func newTestViews(t *testing.T) (*cache.ViewCache, *cache.Revalidator) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	views := cache.NewViewCache(client, logger.Discard())
	return views, cache.NewRevalidator(views, logger.Discard())
}

// liveClientCount answers the dashboard's client count from the client store
type liveClientCount struct {
	*fakeAnalyticsStore
	clients *fakeClientStore
}

func (l liveClientCount) CountClients(context.Context, uuid.UUID) (int, error) {
	return len(l.clients.clients), nil
}

func TestCreateClient_RefreshesCachedAnalytics(t *testing.T) {
	ctx := context.Background()
	views, reval := newTestViews(t)

	clients := newFakeClientStore()
	clientSvc := NewClientService(clients, newFakeAuthorizer(), views, reval, logger.Discard())
	analytics := NewAnalyticsService(liveClientCount{fakeAnalyticsStore: &fakeAnalyticsStore{}, clients: clients}, views)
	userID := uuid.Must(uuid.NewV4())

	before, err := analytics.GetAnalytics(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, before.TotalClients)

	_, err = clientSvc.CreateClient(ctx, userID, &models.ClientRequest{Name: "Acme"})
	require.NoError(t, err)

	after, err := analytics.GetAnalytics(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, after.TotalClients)
}

func TestWrites_DropEveryViewShowingTheRecord(t *testing.T) {
	pages := []string{PathClients, PathProjects, PathInvoices, PathAnalytics, PathSettings}

	type fixture struct {
		clients  *ClientService
		projects *ProjectService
		userID   uuid.UUID
		client   uuid.UUID
		project  uuid.UUID
	}

	for _, tt := range []struct {
		name    string
		write   func(t *testing.T, f fixture)
		dropped []string
		board   bool
	}{
		{
			name: "client create",
			write: func(t *testing.T, f fixture) {
				_, err := f.clients.CreateClient(context.Background(), f.userID, &models.ClientRequest{Name: "Initech"})
				require.NoError(t, err)
			},
			dropped: []string{PathClients, PathProjects, PathInvoices, PathAnalytics},
		},
		{
			name: "client rename",
			write: func(t *testing.T, f fixture) {
				_, err := f.clients.UpdateClient(context.Background(), f.userID, f.client, &models.ClientRequest{Name: "Globex"})
				require.NoError(t, err)
			},
			dropped: []string{PathClients, PathProjects, PathInvoices, PathAnalytics},
		},
		{
			name: "client delete",
			write: func(t *testing.T, f fixture) {
				require.NoError(t, f.clients.DeleteClient(context.Background(), f.userID, f.client))
			},
			dropped: []string{PathClients, PathProjects, PathInvoices, PathAnalytics},
		},
		{
			name: "project rename",
			write: func(t *testing.T, f fixture) {
				name := "Redesign"
				_, err := f.projects.UpdateProject(context.Background(), f.userID, f.project, &models.UpdateProjectRequest{Name: &name})
				require.NoError(t, err)
			},
			dropped: []string{PathProjects, PathInvoices, PathAnalytics},
			board:   true,
		},
		{
			name: "project delete",
			write: func(t *testing.T, f fixture) {
				require.NoError(t, f.projects.DeleteProject(context.Background(), f.userID, f.project))
			},
			dropped: []string{PathProjects, PathInvoices, PathAnalytics},
			board:   true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			views, reval := newTestViews(t)
			authz := newFakeAuthorizer()

			clientStore := newFakeClientStore()
			projectStore := &fakeProjectStore{projects: map[uuid.UUID]models.Project{}}
			f := fixture{
				clients:  NewClientService(clientStore, authz, views, reval, logger.Discard()),
				projects: NewProjectService(projectStore, authz, views, reval, logger.Discard()),
				userID:   uuid.Must(uuid.NewV4()),
			}

			client := &models.Client{UserID: f.userID, Name: "Acme Corp"}
			require.NoError(t, clientStore.Create(ctx, client))
			project := &models.Project{ClientID: client.ID, Name: "Website", Status: models.ProjectActive}
			require.NoError(t, projectStore.Create(ctx, project))
			f.client, f.project = client.ID, project.ID
			authz.own(f.userID, f.client, f.project)

			key := func(path string) string { return cache.ViewKey(path, f.userID.String(), "all") }
			for _, p := range append(pages, ProjectPath(f.project)) {
				views.Set(ctx, key(p), []byte("[]"))
			}

			tt.write(t, f)

			for _, p := range pages {
				_, cached := views.Get(ctx, key(p))
				require.Equal(t, !slices.Contains(tt.dropped, p), cached, p)
			}
			_, cached := views.Get(ctx, key(ProjectPath(f.project)))
			require.Equal(t, !tt.board, cached, "task board")
		})
	}
}

func TestViewsOf(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	require.Equal(t, []string{PathInvoices, PathAnalytics}, viewsOf(access.KindInvoice))
	require.Equal(t,
		[]string{PathProjects, PathInvoices, PathAnalytics, ProjectPath(id)},
		viewsOf(access.KindProject, ProjectPath(id), PathInvoices),
	)
	require.Equal(t, []string{ProjectPath(id)}, viewsOf(access.KindTask, ProjectPath(id)))
}
