package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"crm-backend/internal/cache"
	"crm-backend/internal/models"
)

// revenueWindowMonths is how far back the revenue-by-month series reaches
const revenueWindowMonths = 6

type AnalyticsStore interface {
	CountClients(ctx context.Context, userID uuid.UUID) (int, error)
	ProjectStatuses(ctx context.Context, userID uuid.UUID) ([]models.ProjectStatus, error)
	InvoiceSummaries(ctx context.Context, userID uuid.UUID) ([]models.InvoiceSummary, error)
}

type AnalyticsService struct {
	Repo  AnalyticsStore
	Views *cache.ViewCache
	Now   func() time.Time
}

func NewAnalyticsService(repo AnalyticsStore, views *cache.ViewCache) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Views: views, Now: time.Now}
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID uuid.UUID) (*models.Analytics, error) {
	key := cache.ViewKey(PathAnalytics, userID.String(), "all")

	return cache.Remember(ctx, s.Views, key, func(ctx context.Context) (*models.Analytics, error) {
		return s.build(ctx, userID)
	})
}

func (s *AnalyticsService) build(ctx context.Context, userID uuid.UUID) (*models.Analytics, error) {
	clients, err := s.Repo.CountClients(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	statuses, err := s.Repo.ProjectStatuses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("project statuses: %w", err)
	}

	invoices, err := s.Repo.InvoiceSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("invoice summaries: %w", err)
	}

	a := summarize(invoices, s.Now().AddDate(0, -revenueWindowMonths, 0))
	a.TotalClients = clients
	a.TotalProjects = len(statuses)
	for _, st := range statuses {
		switch st {
		case models.ProjectActive:
			a.ProjectsByStatus.Active++
		case models.ProjectCompleted:
			a.ProjectsByStatus.Completed++
		case models.ProjectOnHold:
			a.ProjectsByStatus.OnHold++
		case models.ProjectArchived:
			a.ProjectsByStatus.Archived++
		}
	}

	return a, nil
}

// summarize rolls invoices (oldest first) into revenue figures. Months appear in
// the series only when they have invoices created on or after since.
func summarize(invoices []models.InvoiceSummary, since time.Time) *models.Analytics {
	a := &models.Analytics{
		TotalInvoices:  len(invoices),
		RevenueByMonth: []models.MonthlyRevenue{},
	}

	index := map[string]int{}
	for _, inv := range invoices {
		a.TotalRevenue += inv.Total
		if inv.Status == models.InvoicePaid {
			a.PaidRevenue += inv.Total
		} else {
			a.PendingRevenue += inv.Total
		}

		switch inv.Status {
		case models.InvoiceDraft:
			a.InvoicesByStatus.Draft++
		case models.InvoiceSent:
			a.InvoicesByStatus.Sent++
		case models.InvoicePaid:
			a.InvoicesByStatus.Paid++
		case models.InvoiceOverdue:
			a.InvoicesByStatus.Overdue++
		}

		if inv.CreatedAt.Before(since) {
			continue
		}

		month := inv.CreatedAt.Format("Jan 2006")
		i, ok := index[month]
		if !ok {
			i = len(a.RevenueByMonth)
			index[month] = i
			a.RevenueByMonth = append(a.RevenueByMonth, models.MonthlyRevenue{Month: month})
		}
		a.RevenueByMonth[i].Revenue += inv.Total
		if inv.Status == models.InvoicePaid {
			a.RevenueByMonth[i].Paid += inv.Total
		}
	}

	return a
}
