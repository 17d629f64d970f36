package repositories

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnershipRepository resolves which user a record belongs to by walking up to its client
type OwnershipRepository struct {
	DB *pgxpool.Pool
}

func NewOwnershipRepository(db *pgxpool.Pool) *OwnershipRepository {
	return &OwnershipRepository{DB: db}
}

func (r *OwnershipRepository) ClientOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return r.owner(ctx, `SELECT user_id FROM clients WHERE id = $1`, id)
}

func (r *OwnershipRepository) ProjectOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return r.owner(ctx,
		`SELECT c.user_id FROM projects p JOIN clients c ON c.id = p.client_id WHERE p.id = $1`, id)
}

func (r *OwnershipRepository) TaskOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return r.owner(ctx,
		`SELECT c.user_id FROM tasks t
		 JOIN projects p ON p.id = t.project_id
		 JOIN clients c ON c.id = p.client_id
		 WHERE t.id = $1`, id)
}

func (r *OwnershipRepository) InvoiceOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return r.owner(ctx,
		`SELECT c.user_id FROM invoices i JOIN clients c ON c.id = i.client_id WHERE i.id = $1`, id)
}

func (r *OwnershipRepository) owner(ctx context.Context, query string, id uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	if err := r.DB.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		return uuid.Nil, translate(err)
	}
	return owner, nil
}
