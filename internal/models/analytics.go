package models

import "time"

type ProjectsByStatus struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	OnHold    int `json:"on_hold"`
	Archived  int `json:"archived"`
}

type InvoicesByStatus struct {
	Draft   int `json:"draft"`
	Sent    int `json:"sent"`
	Paid    int `json:"paid"`
	Overdue int `json:"overdue"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Paid    float64 `json:"paid"`
}

type Analytics struct {
	TotalClients     int              `json:"total_clients"`
	TotalProjects    int              `json:"total_projects"`
	TotalInvoices    int              `json:"total_invoices"`
	TotalRevenue     float64          `json:"total_revenue"`
	PaidRevenue      float64          `json:"paid_revenue"`
	PendingRevenue   float64          `json:"pending_revenue"`
	ProjectsByStatus ProjectsByStatus `json:"projects_by_status"`
	InvoicesByStatus InvoicesByStatus `json:"invoices_by_status"`
	RevenueByMonth   []MonthlyRevenue `json:"revenue_by_month"`
}

// InvoiceSummary is the slice of an invoice the analytics roll-up needs
type InvoiceSummary struct {
	Total     float64
	Status    InvoiceStatus
	CreatedAt time.Time
}
