package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

var (
	ts       = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	userCols = []string{"id", "email", "display_name", "focus_course_id", "created_at", "updated_at"}
)

func TestCreate(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*display_name,\s*focus_course_id,\s*created_at,\s*updated_at\)\s*VALUES`
	acc := &Account{
		User:         models.User{ID: "u1", Email: "a@b.c", DisplayName: "a", CreatedAt: ts, UpdatedAt: ts},
		PasswordHash: "hash",
	}

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).
			WithArgs("u1", "a@b.c", "hash", "a", nil, ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), acc))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(&pgconn.PgError{Code: "23505"})

		require.ErrorIs(t, repo.Create(context.Background(), acc), common.ErrorAlreadyExists)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("db down"))

		err := repo.Create(context.Background(), acc)
		require.Error(t, err)
		assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	})
}

func TestGetByEmail(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*email,\s*display_name,\s*focus_course_id,\s*created_at,\s*updated_at,\s*password_hash\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		rows := sqlmock.NewRows(append(userCols, "password_hash")).
			AddRow("u1", "a@b.c", "a", "c1", ts, ts, "hash")
		mock.ExpectQuery(q).WithArgs("a@b.c").WillReturnRows(rows)

		got, err := repo.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
		require.NotNil(t, got.FocusCourseID)
		assert.Equal(t, "c1", *got.FocusCourseID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("ghost@x").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(context.Background(), "ghost@x")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestGetByID_NullFocus(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rows := sqlmock.NewRows(append(userCols, "password_hash")).
		AddRow("u1", "a@b.c", "a", nil, ts, ts, "hash")
	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1$`).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got.FocusCourseID)
}

func TestUpdateDisplayName(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rows := sqlmock.NewRows(userCols).AddRow("u1", "a@b.c", "New", nil, ts, ts)
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+display_name\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs("u1", "New", ts).
		WillReturnRows(rows)

	got, err := repo.UpdateDisplayName(context.Background(), "u1", "New", ts)
	require.NoError(t, err)
	assert.Equal(t, "New", got.DisplayName)
}

func TestSetFocusCourse_Clear(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+focus_course_id`).
		WithArgs("u1", nil, ts).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SetFocusCourse(context.Background(), "u1", nil, ts)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClearFocusCourse(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+focus_course_id\s*=\s*NULL\s+WHERE\s+focus_course_id\s*=\s*\$1$`).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ClearFocusCourse(context.Background(), "c1"))
}
