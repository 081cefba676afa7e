package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/courses"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/users"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &courses.PostgresRepository{}, m.Courses(db))
}

func TestMemoryManager_SharesRepositories(t *testing.T) {
	m := NewMemoryRepositoryManager()

	assert.Same(t, m.Users(nil), m.Users(newDB(t)))
	assert.Same(t, m.Courses(nil), m.Courses(nil))
	require.NoError(t, m.RunMigrations(context.Background(), nil))
}

func TestRunMigrations(t *testing.T) {
	db := newDB(t)

	t.Run("success", func(t *testing.T) {
		orig := gooseUpContext
		t.Cleanup(func() { gooseUpContext = orig })
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			if dir != "." {
				return errors.New("unexpected dir")
			}
			return nil
		}

		require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	})

	t.Run("error", func(t *testing.T) {
		orig := gooseUpContext
		t.Cleanup(func() { gooseUpContext = orig })
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return errors.New("boom")
		}

		require.EqualError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db), "boom")
	})
}
