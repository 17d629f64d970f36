package repositories

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-backend/internal/models"
)

type AnalyticsRepository struct {
	DB *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) CountClients(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *AnalyticsRepository) ProjectStatuses(ctx context.Context, userID uuid.UUID) ([]models.ProjectStatus, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT p.status FROM projects p JOIN clients c ON c.id = p.client_id WHERE c.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []models.ProjectStatus
	for rows.Next() {
		var s models.ProjectStatus
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// InvoiceSummaries returns total, status and creation time of every invoice, oldest first
func (r *AnalyticsRepository) InvoiceSummaries(ctx context.Context, userID uuid.UUID) ([]models.InvoiceSummary, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT i.total, i.status, i.created_at
		 FROM invoices i JOIN clients c ON c.id = i.client_id
		 WHERE c.user_id = $1
		 ORDER BY i.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.InvoiceSummary
	for rows.Next() {
		var s models.InvoiceSummary
		if err := rows.Scan(&s.Total, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
