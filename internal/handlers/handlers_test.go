package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/access"
	"crm-backend/internal/invoicing"
	"crm-backend/internal/logger"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/services"
)

type stubInvoices struct {
	invoices map[uuid.UUID]*models.InvoiceProjection
}

func (s *stubInvoices) ListByUser(context.Context, uuid.UUID) ([]models.InvoiceWithDetails, error) {
	return nil, nil
}

func (s *stubInvoices) Get(_ context.Context, id uuid.UUID) (*models.InvoiceProjection, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *stubInvoices) Create(context.Context, *models.Invoice, []models.LineItem) error { return nil }
func (s *stubInvoices) Update(context.Context, *models.Invoice, []models.LineItem) error { return nil }
func (s *stubInvoices) UpdateStatus(context.Context, uuid.UUID, models.InvoiceStatus) error {
	return nil
}
func (s *stubInvoices) SetPDFURL(context.Context, uuid.UUID, string) error { return nil }
func (s *stubInvoices) Delete(context.Context, uuid.UUID) error            { return nil }
func (s *stubInvoices) ProjectClient(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, models.ErrNotFound
}

type ownerOnly struct {
	owner uuid.UUID
	known map[uuid.UUID]bool
}

func (o ownerOnly) Authorize(_ context.Context, userID uuid.UUID, _ access.Kind, id uuid.UUID) error {
	if !o.known[id] {
		return models.ErrNotFound
	}
	if userID != o.owner {
		return models.ErrForbidden
	}
	return nil
}

type noopRevalidator struct{}

func (noopRevalidator) Revalidate(context.Context, ...string) {}

// request builds an authenticated request with mux route vars set
func request(method, target, body string, userID uuid.UUID, vars map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != uuid.Nil {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func TestWriteError(t *testing.T) {
	for _, tt := range []struct {
		err  error
		code int
		body string
	}{
		{err: fmt.Errorf("%w: name is required", models.ErrInvalidInput), code: http.StatusBadRequest, body: "name is required"},
		{err: models.ErrUnauthorized, code: http.StatusUnauthorized},
		{err: fmt.Errorf("client: %w", models.ErrForbidden), code: http.StatusForbidden},
		{err: models.ErrNotFound, code: http.StatusNotFound},
		{err: mailer.ErrMailerNotConfigured, code: http.StatusServiceUnavailable, body: "Email service not configured"},
		{err: fmt.Errorf("%w: boom", invoicing.ErrRenderFailed), code: http.StatusInternalServerError, body: "Failed to generate PDF"},
		{err: errors.New("connection reset"), code: http.StatusInternalServerError, body: "Internal server error"},
	} {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger.Discard(), tt.err)
			require.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				require.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestClientHandler_RequestErrors(t *testing.T) {
	h := NewClientHandler(services.NewClientService(nil, nil, nil, noopRevalidator{}, logger.Discard()), logger.Discard())
	userID := uuid.Must(uuid.NewV4())

	for _, tt := range []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
		code    int
	}{
		{
			name:    "unauthenticated",
			handler: h.ListClients,
			req:     request(http.MethodGet, "/api/clients", "", uuid.Nil, nil),
			code:    http.StatusUnauthorized,
		},
		{
			name:    "bad id",
			handler: h.GetClient,
			req:     request(http.MethodGet, "/api/clients/42", "", userID, map[string]string{"id": "42"}),
			code:    http.StatusBadRequest,
		},
		{
			name:    "bad json",
			handler: h.CreateClient,
			req:     request(http.MethodPost, "/api/clients", "{", userID, nil),
			code:    http.StatusBadRequest,
		},
		{
			name:    "validation",
			handler: h.CreateClient,
			req:     request(http.MethodPost, "/api/clients", `{"email":"a@b.co"}`, userID, nil),
			code:    http.StatusBadRequest,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, tt.req)
			require.Equal(t, tt.code, rec.Code)
		})
	}
}

func newInvoiceHandler(t *testing.T, m services.InvoiceMailer) (*InvoiceHandler, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()

	owner := uuid.Must(uuid.NewV4())
	withItems := uuid.Must(uuid.NewV4())
	legacy := uuid.Must(uuid.NewV4())
	created := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	store := &stubInvoices{invoices: map[uuid.UUID]*models.InvoiceProjection{
		withItems: {
			Invoice: models.Invoice{ID: withItems, Total: 110, Tax: 10, CreatedAt: created},
			Items:   []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100, Amount: 100}},
			Client:  models.InvoiceClient{Name: "Acme", Email: "ap@acme.test"},
		},
		legacy: {
			Invoice: models.Invoice{ID: legacy, Total: 110, Tax: 10, CreatedAt: created},
			Client:  models.InvoiceClient{Name: "Acme", Email: "ap@acme.test"},
		},
	}}
	authz := ownerOnly{owner: owner, known: map[uuid.UUID]bool{withItems: true, legacy: true}}

	svc := services.NewInvoiceService(store, authz, nil, noopRevalidator{}, invoicing.NewRenderer(), m, nil, logger.Discard())
	return NewInvoiceHandler(svc, logger.Discard()), owner, withItems, legacy
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	h, owner, withItems, legacy := newInvoiceHandler(t, nil)

	t.Run("attachment headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DownloadPDF(rec, request(http.MethodGet, "/", "", owner, map[string]string{"id": withItems.String()}))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		require.Equal(t, `attachment; filename="invoice-`+models.ShortID(withItems)+`.pdf"`, rec.Header().Get("Content-Disposition"))
		require.Empty(t, rec.Header().Get("X-Invoice-Subtotal-Approximated"))
		require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	})

	t.Run("approximated subtotal is flagged", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DownloadPDF(rec, request(http.MethodGet, "/", "", owner, map[string]string{"id": legacy.String()}))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "true", rec.Header().Get("X-Invoice-Subtotal-Approximated"))
	})

	t.Run("other user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DownloadPDF(rec, request(http.MethodGet, "/", "", uuid.Must(uuid.NewV4()), map[string]string{"id": withItems.String()}))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.DownloadPDF(rec, request(http.MethodGet, "/", "", owner, map[string]string{"id": uuid.Must(uuid.NewV4()).String()}))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInvoiceHandler_SendWithoutMailer(t *testing.T) {
	h, owner, withItems, _ := newInvoiceHandler(t, nil)

	rec := httptest.NewRecorder()
	h.SendInvoice(rec, request(http.MethodPost, "/", `{"email":"ap@acme.test"}`, owner, map[string]string{"id": withItems.String()}))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Email service not configured")

	rec = httptest.NewRecorder()
	h.SendInvoice(rec, request(http.MethodPost, "/", `{}`, owner, map[string]string{"id": withItems.String()}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceHandler_PreviewTotals(t *testing.T) {
	h, owner, _, _ := newInvoiceHandler(t, nil)

	rec := httptest.NewRecorder()
	h.PreviewTotals(rec, request(http.MethodPost, "/api/invoices/preview-totals",
		`{"items":[{"description":"Work","quantity":2,"rate":50}],"tax":10,"discount":5}`, owner, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"subtotal":100,"tax_amount":10,"total":105}`, rec.Body.String())
}
