package repositories

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/models"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	require.NoError(t, translate(nil))
	require.ErrorIs(t, translate(pgx.ErrNoRows), models.ErrNotFound)
	require.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), models.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := translate(dup)
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Contains(t, err.Error(), "users_email_key")

	other := errors.New("boom")
	require.Equal(t, other, translate(other))
}

func TestDateParam(t *testing.T) {
	t.Parallel()

	v, err := dateParam(nil)
	require.NoError(t, err)
	require.Nil(t, v)

	empty := ""
	v, err = dateParam(&empty)
	require.NoError(t, err)
	require.Nil(t, v)

	due := "2024-05-31"
	v, err = dateParam(&due)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), v)

	bad := "31/05/2024"
	_, err = dateParam(&bad)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestMustAffect(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, mustAffect(pgconn.NewCommandTag("DELETE 0"), nil), models.ErrNotFound)
	require.NoError(t, mustAffect(pgconn.NewCommandTag("DELETE 1"), nil))
	require.ErrorIs(t, mustAffect(pgconn.CommandTag{}, pgx.ErrNoRows), models.ErrNotFound)
}

func TestClientListQuery(t *testing.T) {
	t.Parallel()

	userID := uuid.Must(uuid.NewV4())

	sqlQuery, args, err := clientListQuery(userID, "").ToSql()
	require.NoError(t, err)
	require.Equal(t,
		"SELECT id, user_id, name, email, phone, company, notes, created_at FROM clients WHERE user_id = $1 ORDER BY created_at DESC",
		sqlQuery)
	// squirrel resolves driver.Valuer, so the id travels as its string form
	require.Equal(t, []any{userID.String()}, args)

	sqlQuery, args, err = clientListQuery(userID, "ada").ToSql()
	require.NoError(t, err)
	require.Contains(t, sqlQuery, "name ILIKE $2")
	require.Equal(t, []any{userID.String(), "%ada%"}, args)
}
