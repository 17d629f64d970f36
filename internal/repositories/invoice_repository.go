package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype/zeronull"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-backend/internal/models"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// Create inserts the invoice and its items in one transaction
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO invoices(client_id, project_id, total, tax, discount, status, notes)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		invoice.ClientID, invoice.ProjectID, invoice.Total, invoice.Tax, invoice.Discount,
		invoice.Status, zeronull.Text(invoice.Notes),
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return translate(err)
	}

	if err := insertItems(ctx, tx, invoice.ID, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites the invoice row. When items is non-nil the stored items are replaced.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice, items []models.LineItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE invoices
		 SET client_id = $1, project_id = $2, total = $3, tax = $4, discount = $5,
		     status = $6, notes = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING created_at, updated_at`,
		invoice.ClientID, invoice.ProjectID, invoice.Total, invoice.Tax, invoice.Discount,
		invoice.Status, zeronull.Text(invoice.Notes), invoice.ID,
	).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return translate(err)
	}

	if items != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoice.ID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, invoice.ID, items); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []models.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	stmt := psql.Insert("invoice_items").
		Columns("invoice_id", "position", "description", "quantity", "rate", "amount")
	for i, item := range items {
		stmt = stmt.Values(invoiceID, i, item.Description, item.Quantity, item.Rate, item.Amount)
	}

	sqlQuery, args, err := stmt.ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, sqlQuery, args...); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

// ListByUser returns the user's invoices with client and project names, newest first
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InvoiceWithDetails, error) {
	sqlQuery, args, err := psql.Select(
		"i.id", "i.client_id", "i.project_id", "i.total", "i.tax", "i.discount", "i.status",
		"i.notes", "i.pdf_url", "i.created_at", "i.updated_at",
		"c.name", "COALESCE(p.name, '')",
	).
		From("invoices i").
		Join("clients c ON c.id = i.client_id").
		LeftJoin("projects p ON p.id = i.project_id").
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("i.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.InvoiceWithDetails{}
	for rows.Next() {
		var inv models.InvoiceWithDetails
		err := rows.Scan(
			&inv.ID, &inv.ClientID, &inv.ProjectID, &inv.Total, &inv.Tax, &inv.Discount, &inv.Status,
			(*zeronull.Text)(&inv.Notes), (*zeronull.Text)(&inv.PDFURL), &inv.CreatedAt, &inv.UpdatedAt,
			&inv.ClientName, &inv.ProjectName,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// Get loads the full projection: invoice, client, optional project and ordered items
func (r *InvoiceRepository) Get(ctx context.Context, id uuid.UUID) (*models.InvoiceProjection, error) {
	var (
		inv         models.InvoiceProjection
		projectName *string
	)
	err := r.DB.QueryRow(ctx,
		`SELECT i.id, i.client_id, i.project_id, i.total, i.tax, i.discount, i.status,
		        i.notes, i.pdf_url, i.created_at, i.updated_at,
		        c.name, c.email, c.company, c.phone, p.name
		 FROM invoices i
		 JOIN clients c ON c.id = i.client_id
		 LEFT JOIN projects p ON p.id = i.project_id
		 WHERE i.id = $1`, id,
	).Scan(
		&inv.ID, &inv.ClientID, &inv.ProjectID, &inv.Total, &inv.Tax, &inv.Discount, &inv.Status,
		(*zeronull.Text)(&inv.Notes), (*zeronull.Text)(&inv.PDFURL), &inv.CreatedAt, &inv.UpdatedAt,
		&inv.Client.Name,
		(*zeronull.Text)(&inv.Client.Email),
		(*zeronull.Text)(&inv.Client.Company),
		(*zeronull.Text)(&inv.Client.Phone),
		&projectName,
	)
	if err != nil {
		return nil, translate(err)
	}
	if projectName != nil {
		inv.Project = &models.InvoiceProject{Name: *projectName}
	}

	rows, err := r.DB.Query(ctx,
		`SELECT description, quantity, rate, amount
		 FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inv.Items = []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.Description, &item.Quantity, &item.Rate, &item.Amount); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}

	return &inv, rows.Err()
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	return mustAffect(r.DB.Exec(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id))
}

func (r *InvoiceRepository) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	return mustAffect(r.DB.Exec(ctx,
		`UPDATE invoices SET pdf_url = $1, updated_at = NOW() WHERE id = $2`, url, id))
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.DB.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id))
}

// ProjectClient returns the client a project is billed to
func (r *InvoiceRepository) ProjectClient(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	var clientID uuid.UUID
	err := r.DB.QueryRow(ctx, `SELECT client_id FROM projects WHERE id = $1`, projectID).Scan(&clientID)
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return clientID, nil
}
