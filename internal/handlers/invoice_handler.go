package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	Log     logrus.FieldLogger
}

func NewInvoiceHandler(s *services.InvoiceService, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{Service: s, Log: log}
}

func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	invoices, err := h.Service.ListInvoices(ctx, userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if invoices == nil {
		invoices = []models.InvoiceWithDetails{}
	}

	utils.JSON(w, http.StatusOK, invoices)
}

// PreviewTotals recomputes subtotal, tax and total for the invoice form without saving
func (h *InvoiceHandler) PreviewTotals(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	var req models.PreviewTotalsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	totals, err := h.Service.PreviewTotals(&req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, totals)
}

func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	invoice, err := h.Service.CreateInvoice(ctx, userID, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	invoice, err := h.Service.GetInvoice(ctx, userID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	var req models.UpdateInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	invoice, err := h.Service.UpdateInvoice(ctx, userID, id, &req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.UpdateInvoiceStatus(ctx, userID, id, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": req.Status})
}

func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.DeleteInvoice(ctx, userID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadPDF streams the rendered invoice as an attachment
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	pdf, err := h.Service.RenderPDF(ctx, userID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+quoteFilename(pdf.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.Bytes)))
	if pdf.SubtotalApproximated {
		w.Header().Set("X-Invoice-Subtotal-Approximated", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(pdf.Bytes)
}

// SendInvoice emails the PDF to the address in the body and marks the invoice sent
func (h *InvoiceHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "invoice")
	if !ok {
		return
	}

	var req models.SendInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Service.SendInvoice(ctx, userID, id, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
