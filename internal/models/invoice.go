package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Invoice is the stored invoice row. Total is always derived from items, tax and discount.
type Invoice struct {
	ID        uuid.UUID     `json:"id"`
	ClientID  uuid.UUID     `json:"client_id"`
	ProjectID *uuid.UUID    `json:"project_id"`
	Total     float64       `json:"total"`
	Tax       float64       `json:"tax"`
	Discount  float64       `json:"discount"`
	Status    InvoiceStatus `json:"status"`
	Notes     string        `json:"notes"`
	PDFURL    string        `json:"pdf_url"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ShortID is the first 8 hex characters of the id, used in display and filenames
func (i *Invoice) ShortID() string {
	return ShortID(i.ID)
}

func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

// LineItem is one billable row on an invoice
type LineItem struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gte=1"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Amount      float64 `json:"amount"`
}

// Recompute restores amount == quantity * rate
func (li *LineItem) Recompute() {
	li.Amount = li.Quantity * li.Rate
}

// InvoiceWithDetails is the list projection shown on the invoices page
type InvoiceWithDetails struct {
	Invoice
	ClientName  string `json:"client_name"`
	ProjectName string `json:"project_name,omitempty"`
}

// InvoiceClient is the client part of the full invoice projection
type InvoiceClient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type InvoiceProject struct {
	Name string `json:"name"`
}

// InvoiceProjection is everything needed to show, render or send one invoice
type InvoiceProjection struct {
	Invoice
	Items   []LineItem      `json:"items"`
	Client  InvoiceClient   `json:"client"`
	Project *InvoiceProject `json:"project,omitempty"`
}

type CreateInvoiceRequest struct {
	ClientID  uuid.UUID     `json:"client_id" validate:"required"`
	ProjectID *uuid.UUID    `json:"project_id"`
	Items     []LineItem    `json:"items" validate:"min=1,dive"`
	Tax       float64       `json:"tax" validate:"gte=0,lte=100"`
	Discount  float64       `json:"discount" validate:"gte=0"`
	Status    InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	Notes     string        `json:"notes"`
}

// UpdateInvoiceRequest carries only the fields being changed. Items, when present, replace all stored items.
type UpdateInvoiceRequest struct {
	ClientID  *uuid.UUID     `json:"client_id"`
	ProjectID *uuid.UUID     `json:"project_id"`
	Items     []LineItem     `json:"items" validate:"omitempty,min=1,dive"`
	Tax       *float64       `json:"tax" validate:"omitempty,gte=0,lte=100"`
	Discount  *float64       `json:"discount" validate:"omitempty,gte=0"`
	Status    *InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	Notes     *string        `json:"notes"`
}

// TotalsChanged reports whether the stored total must be recomputed
func (r *UpdateInvoiceRequest) TotalsChanged() bool {
	return r.Items != nil || r.Tax != nil || r.Discount != nil
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=draft sent paid overdue"`
}

type SendInvoiceRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PreviewTotalsRequest struct {
	Items    []LineItem `json:"items" validate:"dive"`
	Tax      float64    `json:"tax" validate:"gte=0,lte=100"`
	Discount float64    `json:"discount" validate:"gte=0"`
}
