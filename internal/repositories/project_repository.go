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

var projectColumns = []string{
	"p.id",
	"p.client_id",
	"p.name",
	"p.description",
	"p.status",
	"to_char(p.due_date, 'YYYY-MM-DD')",
	"p.created_at",
	"c.name",
}

type ProjectRepository struct {
	DB *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

// ListByUser returns every project under the user's clients, newest first
func (r *ProjectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ProjectWithClient, error) {
	sqlQuery, args, err := psql.Select(projectColumns...).
		From("projects p").
		Join("clients c ON c.id = p.client_id").
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.ProjectWithClient{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*models.ProjectWithClient, error) {
	sqlQuery, args, err := psql.Select(projectColumns...).
		From("projects p").
		Join("clients c ON c.id = p.client_id").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProject(r.DB.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	due, err := dateParam(p.DueDate)
	if err != nil {
		return err
	}

	err = r.DB.QueryRow(ctx,
		`INSERT INTO projects(client_id, name, description, status, due_date)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		p.ClientID, p.Name, zeronull.Text(p.Description), p.Status, due,
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err)
}

// Update applies only the fields present in req
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateProjectRequest) error {
	set := map[string]any{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.ClientID != nil {
		set["client_id"] = *req.ClientID
	}
	if req.Description != nil {
		set["description"] = zeronull.Text(*req.Description)
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.DueDate != nil {
		due, err := dateParam(req.DueDate)
		if err != nil {
			return err
		}
		set["due_date"] = due
	}
	if len(set) == 0 {
		return nil
	}

	sqlQuery, args, err := psql.Update("projects").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	return mustAffect(r.DB.Exec(ctx, sqlQuery, args...))
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.DB.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id))
}

func scanProject(row pgx.Row) (models.ProjectWithClient, error) {
	var p models.ProjectWithClient
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.Name,
		(*zeronull.Text)(&p.Description),
		&p.Status,
		&p.DueDate,
		&p.CreatedAt,
		&p.ClientName,
	)
	return p, err
}
