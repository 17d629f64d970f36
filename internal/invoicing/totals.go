package invoicing

import "crm-backend/internal/models"

// Totals is the roll-up of an invoice's line items, tax and discount.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// ComputeTotals sums the stored item amounts, applies taxRatePercent to the subtotal and subtracts discount.
// No rounding or clamping is applied: an empty invoice with a discount yields a negative total.
func ComputeTotals(items []models.LineItem, taxRatePercent, discount float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}

	taxAmount := subtotal * taxRatePercent / 100

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal + taxAmount - discount,
	}
}
