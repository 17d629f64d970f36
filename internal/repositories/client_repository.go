package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype/zeronull"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-backend/internal/models"
)

var clientColumns = []string{"id", "user_id", "name", "email", "phone", "company", "notes", "created_at"}

type ClientRepository struct {
	DB *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{DB: db}
}

// List returns the user's clients, newest first, optionally filtered by a case-insensitive name match
func (r *ClientRepository) List(ctx context.Context, userID uuid.UUID, query string) ([]models.Client, error) {
	sqlQuery, args, err := clientListQuery(userID, query).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	sqlQuery, args, err := psql.Select(clientColumns...).From("clients").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanClient(r.DB.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO clients(user_id, name, email, phone, company, notes)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.UserID, c.Name,
		zeronull.Text(c.Email), zeronull.Text(c.Phone), zeronull.Text(c.Company), zeronull.Text(c.Notes),
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE clients SET name = $1, email = $2, phone = $3, company = $4, notes = $5
		 WHERE id = $6
		 RETURNING user_id, created_at`,
		c.Name,
		zeronull.Text(c.Email), zeronull.Text(c.Phone), zeronull.Text(c.Company), zeronull.Text(c.Notes),
		c.ID,
	).Scan(&c.UserID, &c.CreatedAt)
	return translate(err)
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.DB.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id))
}

func clientListQuery(userID uuid.UUID, query string) sq.SelectBuilder {
	stmt := psql.Select(clientColumns...).
		From("clients").
		Where(sq.Eq{"user_id": userID})

	if query != "" {
		stmt = stmt.Where(sq.ILike{"name": "%" + query + "%"})
	}

	return stmt.OrderBy("created_at DESC")
}

func scanClient(row pgx.Row) (models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		(*zeronull.Text)(&c.Email),
		(*zeronull.Text)(&c.Phone),
		(*zeronull.Text)(&c.Company),
		(*zeronull.Text)(&c.Notes),
		&c.CreatedAt,
	)
	return c, err
}
