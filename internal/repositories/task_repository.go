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

var taskColumns = []string{
	"id",
	"project_id",
	"name",
	"description",
	"status",
	"to_char(due_date, 'YYYY-MM-DD')",
	"created_at",
}

type TaskRepository struct {
	DB *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{DB: db}
}

// ListByProject returns the project's tasks in creation order
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	sqlQuery, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	sqlQuery, args, err := psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.DB.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	due, err := dateParam(t.DueDate)
	if err != nil {
		return err
	}

	err = r.DB.QueryRow(ctx,
		`INSERT INTO tasks(project_id, name, description, status, due_date)
		 VALUES($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.ProjectID, t.Name, zeronull.Text(t.Description), t.Status, due,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}

// Update applies only the fields present in req
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateTaskRequest) error {
	set := map[string]any{}
	if req.Name != nil {
		set["name"] = *req.Name
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

	sqlQuery, args, err := psql.Update("tasks").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	return mustAffect(r.DB.Exec(ctx, sqlQuery, args...))
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(r.DB.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		(*zeronull.Text)(&t.Description),
		&t.Status,
		&t.DueDate,
		&t.CreatedAt,
	)
	return t, err
}
