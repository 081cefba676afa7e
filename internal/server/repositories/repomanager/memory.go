package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/courses"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out one shared set of in-memory repositories
// whatever DBTX is passed. Writes are not transactional.
type MemoryRepositoryManager struct {
	users   *users.MemoryRepository
	courses *courses.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		courses: courses.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Courses(dbx.DBTX) courses.Repository { return m.courses }
