package repositories

import (
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"crm-backend/internal/models"
)

const uniqueViolation = "23505"

// psql is the statement builder for every dynamic query in this package
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// translate maps driver errors onto the model error kinds
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s already exists", models.ErrInvalidInput, pgErr.ConstraintName)
	}

	return err
}

// dateParam converts an optional YYYY-MM-DD string into a DATE parameter
func dateParam(s *string) (any, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be a date", models.ErrInvalidInput)
	}
	return t, nil
}

// mustAffect turns an UPDATE/DELETE that matched nothing into ErrNotFound
func mustAffect(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
