package repositories

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-backend/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// EnsureByEmail returns the user with this email, creating it on first sight
func (r *UserRepository) EnsureByEmail(ctx context.Context, email, name string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(email, name) VALUES($1, $2)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, name, email, created_at`,
		email, name,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, name, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx,
		`UPDATE users SET name = $1, email = $2 WHERE id = $3
		 RETURNING id, name, email, created_at`,
		name, email, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Delete removes the user; clients, projects, tasks and invoices cascade
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
