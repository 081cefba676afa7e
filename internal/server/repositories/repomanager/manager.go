package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/courses"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// them either on the pool or inside a dbx.WithTx transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Courses(db dbx.DBTX) courses.Repository
}
