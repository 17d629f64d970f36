package services

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"crm-backend/internal/access"
	"crm-backend/internal/mailer"
	"crm-backend/internal/models"
)

type fakeAuthorizer struct {
	owners map[uuid.UUID]uuid.UUID
}

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{owners: map[uuid.UUID]uuid.UUID{}}
}

func (f *fakeAuthorizer) own(userID uuid.UUID, ids ...uuid.UUID) {
	for _, id := range ids {
		f.owners[id] = userID
	}
}

func (f *fakeAuthorizer) Authorize(_ context.Context, userID uuid.UUID, _ access.Kind, id uuid.UUID) error {
	owner, ok := f.owners[id]
	if !ok {
		return models.ErrNotFound
	}
	if owner != userID {
		return models.ErrForbidden
	}
	return nil
}

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
}

type fakeClientStore struct {
	clients map[uuid.UUID]models.Client
}

func newFakeClientStore() *fakeClientStore {
	return &fakeClientStore{clients: map[uuid.UUID]models.Client{}}
}

func (f *fakeClientStore) List(_ context.Context, userID uuid.UUID, _ string) ([]models.Client, error) {
	var out []models.Client
	for _, c := range f.clients {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClientStore) Get(_ context.Context, id uuid.UUID) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (f *fakeClientStore) Create(_ context.Context, c *models.Client) error {
	c.ID = uuid.Must(uuid.NewV4())
	c.CreatedAt = time.Now()
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeClientStore) Update(_ context.Context, c *models.Client) error {
	stored, ok := f.clients[c.ID]
	if !ok {
		return models.ErrNotFound
	}
	c.UserID = stored.UserID
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeClientStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.clients[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

type fakeTaskStore struct {
	tasks map[uuid.UUID]models.Task
}

func (f *fakeTaskStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.Task, error) {
	var out []models.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) Get(_ context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTaskStore) Create(_ context.Context, t *models.Task) error {
	t.ID = uuid.Must(uuid.NewV4())
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeTaskStore) Update(_ context.Context, id uuid.UUID, req *models.UpdateTaskRequest) error {
	t, ok := f.tasks[id]
	if !ok {
		return models.ErrNotFound
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	f.tasks[id] = t
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tasks, id)
	return nil
}

type fakeInvoiceStore struct {
	invoices map[uuid.UUID]*models.InvoiceProjection
	projects map[uuid.UUID]uuid.UUID
	statuses []models.InvoiceStatus
	pdfURL   string
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices: map[uuid.UUID]*models.InvoiceProjection{},
		projects: map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeInvoiceStore) ProjectClient(_ context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	clientID, ok := f.projects[projectID]
	if !ok {
		return uuid.Nil, models.ErrNotFound
	}
	return clientID, nil
}

func (f *fakeInvoiceStore) ListByUser(context.Context, uuid.UUID) ([]models.InvoiceWithDetails, error) {
	var out []models.InvoiceWithDetails
	for _, inv := range f.invoices {
		out = append(out, models.InvoiceWithDetails{Invoice: inv.Invoice, ClientName: inv.Client.Name})
	}
	return out, nil
}

func (f *fakeInvoiceStore) Get(_ context.Context, id uuid.UUID) (*models.InvoiceProjection, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *inv
	cp.Items = append([]models.LineItem{}, inv.Items...)
	return &cp, nil
}

func (f *fakeInvoiceStore) Create(_ context.Context, invoice *models.Invoice, items []models.LineItem) error {
	invoice.ID = uuid.Must(uuid.NewV4())
	invoice.CreatedAt = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	invoice.UpdatedAt = invoice.CreatedAt
	f.invoices[invoice.ID] = &models.InvoiceProjection{
		Invoice: *invoice,
		Items:   append([]models.LineItem{}, items...),
		Client:  models.InvoiceClient{Name: "Acme Corp", Email: "billing@acme.test"},
	}
	return nil
}

func (f *fakeInvoiceStore) Update(_ context.Context, invoice *models.Invoice, items []models.LineItem) error {
	stored, ok := f.invoices[invoice.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Invoice = *invoice
	if items != nil {
		stored.Items = append([]models.LineItem{}, items...)
	}
	return nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	stored, ok := f.invoices[id]
	if !ok {
		return models.ErrNotFound
	}
	stored.Status = status
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeInvoiceStore) SetPDFURL(_ context.Context, id uuid.UUID, url string) error {
	stored, ok := f.invoices[id]
	if !ok {
		return models.ErrNotFound
	}
	stored.PDFURL = url
	f.pdfURL = url
	return nil
}

func (f *fakeInvoiceStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.invoices, id)
	return nil
}

type fakeMailer struct {
	enabled bool
	sent    []mailer.Message
	err     error
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(_ context.Context, message mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) Enabled() bool { return true }

func (f *fakeArchive) PutInvoicePDF(_ context.Context, key string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://files.example.com/" + key, nil
}
