package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/access"
	"crm-backend/internal/cache"
	"crm-backend/internal/invoicing"
	"crm-backend/internal/mailer"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/storage"
)

type InvoiceStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InvoiceWithDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InvoiceProjection, error)
	Create(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error
	Update(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
	SetPDFURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ProjectClient(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
}

type InvoiceMailer interface {
	Enabled() bool
	Send(ctx context.Context, message mailer.Message) error
}

type PDFArchive interface {
	Enabled() bool
	PutInvoicePDF(ctx context.Context, key string, data []byte) (string, error)
}

// InvoicePDF is a rendered invoice ready to be downloaded or attached
type InvoicePDF struct {
	*invoicing.Rendered
	Invoice  *models.InvoiceProjection
	Filename string
}

type InvoiceService struct {
	Repo        InvoiceStore
	Access      Authorizer
	Views       *cache.ViewCache
	Revalidator Revalidator
	Renderer    *invoicing.Renderer
	Mailer      InvoiceMailer
	Archive     PDFArchive
	Log         logrus.FieldLogger
}

func NewInvoiceService(
	repo InvoiceStore,
	authz Authorizer,
	views *cache.ViewCache,
	revalidator Revalidator,
	renderer *invoicing.Renderer,
	m InvoiceMailer,
	archive PDFArchive,
	log logrus.FieldLogger,
) *InvoiceService {
	return &InvoiceService{
		Repo:        repo,
		Access:      authz,
		Views:       views,
		Revalidator: revalidator,
		Renderer:    renderer,
		Mailer:      m,
		Archive:     archive,
		Log:         log,
	}
}

func (s *InvoiceService) ListInvoices(ctx context.Context, userID uuid.UUID) ([]models.InvoiceWithDetails, error) {
	key := cache.ViewKey(PathInvoices, userID.String(), "all")

	return cache.Remember(ctx, s.Views, key, func(ctx context.Context) ([]models.InvoiceWithDetails, error) {
		return s.Repo.ListByUser(ctx, userID)
	})
}

func (s *InvoiceService) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*models.InvoiceProjection, error) {
	if err := s.Access.Authorize(ctx, userID, access.KindInvoice, id); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

// PreviewTotals runs the calculator over unsaved form input
func (s *InvoiceService) PreviewTotals(req *models.PreviewTotalsRequest) (invoicing.Totals, error) {
	if err := models.Validate(req); err != nil {
		return invoicing.Totals{}, err
	}
	items := recomputed(req.Items)
	return invoicing.ComputeTotals(items, req.Tax, req.Discount), nil
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, userID uuid.UUID, req *models.CreateInvoiceRequest) (*models.InvoiceProjection, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.authorizeRefs(ctx, userID, &req.ClientID, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.checkProjectClient(ctx, req.ClientID, req.ProjectID); err != nil {
		return nil, err
	}

	items := recomputed(req.Items)
	totals := invoicing.ComputeTotals(items, req.Tax, req.Discount)

	invoice := &models.Invoice{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Total:     totals.Total,
		Tax:       req.Tax,
		Discount:  req.Discount,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceDraft
	}

	if err := s.Repo.Create(ctx, invoice, items); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"invoice_id": invoice.ID,
		"total":      invoice.Total,
	}).Info("[Invoices] Created")
	s.Revalidator.Revalidate(ctx, viewsOf(access.KindInvoice)...)

	return s.Repo.Get(ctx, invoice.ID)
}

// UpdateInvoice applies a partial update. Items, when present, replace the stored items.
// The total is recomputed whenever items, tax or discount change; omitted values keep their stored value.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, userID, id uuid.UUID, req *models.UpdateInvoiceRequest) (*models.InvoiceProjection, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindInvoice, id); err != nil {
		return nil, err
	}
	if err := s.authorizeRefs(ctx, userID, req.ClientID, req.ProjectID); err != nil {
		return nil, err
	}

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice := current.Invoice
	if req.ClientID != nil {
		invoice.ClientID = *req.ClientID
	}
	if req.ProjectID != nil {
		invoice.ProjectID = req.ProjectID
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.ClientID != nil || req.ProjectID != nil {
		if err := s.checkProjectClient(ctx, invoice.ClientID, invoice.ProjectID); err != nil {
			return nil, err
		}
	}
	if req.Tax != nil {
		invoice.Tax = *req.Tax
	}
	if req.Discount != nil {
		invoice.Discount = *req.Discount
	}

	var replaced []models.LineItem
	if req.Items != nil {
		replaced = recomputed(req.Items)
	}

	if req.TotalsChanged() {
		items := current.Items
		if replaced != nil {
			items = replaced
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: items are required to change the totals of an invoice without line items", models.ErrInvalidInput)
		}
		invoice.Total = invoicing.ComputeTotals(items, invoice.Tax, invoice.Discount).Total
	}

	if err := s.Repo.Update(ctx, &invoice, replaced); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindInvoice)...)
	return s.Repo.Get(ctx, id)
}

func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, userID, id uuid.UUID, req *models.UpdateInvoiceStatusRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}
	if err := s.Access.Authorize(ctx, userID, access.KindInvoice, id); err != nil {
		return err
	}

	if err := s.Repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindInvoice)...)
	return nil
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Access.Authorize(ctx, userID, access.KindInvoice, id); err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	s.Revalidator.Revalidate(ctx, viewsOf(access.KindInvoice)...)
	return nil
}

// RenderPDF renders the stored invoice. When object storage is configured the
// document is archived too; archive failures are logged and never fail the render.
func (s *InvoiceService) RenderPDF(ctx context.Context, userID, id uuid.UUID) (*InvoicePDF, error) {
	invoice, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rendered, err := s.Renderer.Render(invoicing.DocumentFrom(invoice))
	if err != nil {
		metrics.InvoicesRendered.WithLabelValues("failed").Inc()
		s.Log.WithError(err).WithField("invoice_id", id).Error("[Invoices] PDF generation failed")
		return nil, err
	}

	if rendered.SubtotalApproximated {
		metrics.InvoicesRendered.WithLabelValues("approximated").Inc()
		s.Log.WithFields(logrus.Fields{
			"invoice_id": id,
			"subtotal":   rendered.Subtotal,
		}).Warn("[Invoices] No line items stored, subtotal reconstructed from total")
	} else {
		metrics.InvoicesRendered.WithLabelValues("ok").Inc()
	}

	s.archive(ctx, invoice, rendered.Bytes)

	return &InvoicePDF{
		Rendered: rendered,
		Invoice:  invoice,
		Filename: "invoice-" + invoice.ShortID() + ".pdf",
	}, nil
}

func (s *InvoiceService) archive(ctx context.Context, invoice *models.InvoiceProjection, data []byte) {
	if s.Archive == nil || !s.Archive.Enabled() {
		return
	}

	log := s.Log.WithField("invoice_id", invoice.ID)

	url, err := s.Archive.PutInvoicePDF(ctx, storage.InvoiceKey(invoice.ID.String()), data)
	if err != nil {
		log.WithError(err).Warn("[Invoices] PDF archive failed")
		return
	}
	if url == invoice.PDFURL {
		return
	}

	if err := s.Repo.SetPDFURL(ctx, invoice.ID, url); err != nil {
		log.WithError(err).Warn("[Invoices] Failed to record PDF URL")
		return
	}
	invoice.PDFURL = url
}

// SendInvoice emails the rendered invoice to req.Email and marks it sent
func (s *InvoiceService) SendInvoice(ctx context.Context, userID, id uuid.UUID, req *models.SendInvoiceRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}
	if s.Mailer == nil || !s.Mailer.Enabled() {
		return mailer.ErrMailerNotConfigured
	}

	pdf, err := s.RenderPDF(ctx, userID, id)
	if err != nil {
		return err
	}

	html, err := invoiceEmailHTML(pdf.Invoice)
	if err != nil {
		return fmt.Errorf("compose invoice email: %w", err)
	}

	err = s.Mailer.Send(ctx, mailer.Message{
		To:          req.Email,
		Subject:     "Invoice #" + strings.ToUpper(pdf.Invoice.ShortID()),
		HTML:        html,
		Attachments: []mailer.Attachment{{Name: pdf.Filename, Data: pdf.Bytes}},
	})
	if err != nil {
		metrics.InvoiceEmails.WithLabelValues("failed").Inc()
		s.Log.WithError(err).WithField("invoice_id", id).Error("[Invoices] Email send error")
		return err
	}
	metrics.InvoiceEmails.WithLabelValues("sent").Inc()

	if err := s.Repo.UpdateStatus(ctx, id, models.InvoiceSent); err != nil {
		return fmt.Errorf("mark invoice sent: %w", err)
	}

	s.Log.WithFields(logrus.Fields{"invoice_id": id, "to": req.Email}).Info("[Invoices] Sent")
	s.Revalidator.Revalidate(ctx, viewsOf(access.KindInvoice)...)
	return nil
}

// authorizeRefs checks the client and project an invoice points at
func (s *InvoiceService) authorizeRefs(ctx context.Context, userID uuid.UUID, clientID, projectID *uuid.UUID) error {
	if clientID != nil {
		if err := s.Access.Authorize(ctx, userID, access.KindClient, *clientID); err != nil {
			return referenceError("client", err)
		}
	}
	if projectID != nil {
		if err := s.Access.Authorize(ctx, userID, access.KindProject, *projectID); err != nil {
			return referenceError("project", err)
		}
	}
	return nil
}

// checkProjectClient requires the invoiced project to belong to the invoiced client
func (s *InvoiceService) checkProjectClient(ctx context.Context, clientID uuid.UUID, projectID *uuid.UUID) error {
	if projectID == nil {
		return nil
	}

	owner, err := s.Repo.ProjectClient(ctx, *projectID)
	if err != nil {
		return referenceError("project", err)
	}
	if owner != clientID {
		return fmt.Errorf("%w: project belongs to a different client", models.ErrInvalidInput)
	}
	return nil
}

// referenceError reports a missing referenced record as bad input rather than a missing invoice
func referenceError(what string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s does not exist", models.ErrInvalidInput, what)
	}
	return err
}

// recomputed copies items restoring amount == quantity * rate
func recomputed(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		item.Recompute()
		out[i] = item
	}
	return out
}
