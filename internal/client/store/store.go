package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pocketschool/internal/client/migrations"
	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/pending"
	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/records"
	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/filex"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// ErrStorage marks failures of the local persistence medium.
var ErrStorage = errors.New("local storage error")

type repositories struct {
	records  records.Repository
	pending  pending.Repository
	metadata metadata.Repository
}

func memoryRepositories() repositories {
	return repositories{
		records:  records.NewMemoryRepository(),
		pending:  pending.NewMemoryRepository(),
		metadata: metadata.NewMemoryRepository(),
	}
}

type Store struct {
	mu       sync.RWMutex
	db       *sql.DB
	repos    repositories
	degraded bool
	logger   logging.Logger
}

// openDB is a seam for tests.
var openDB = func(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases consistent across calls
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the embedded client schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open returns a store backed by the SQLite database at path. It never
// fails: when the database cannot be opened or migrated the store starts
// in memory.
func Open(ctx context.Context, path string, logger logging.Logger) *Store {
	logger = logger.With("module", "store")

	db, err := openDB(ctx, path)
	if err == nil {
		if err = RunMigrations(ctx, db); err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		logger.Warn(ctx, "local storage unavailable, using in-memory store", "path", path, "error", err)
		return &Store{repos: memoryRepositories(), degraded: true, logger: logger}
	}

	return &Store{
		db: db,
		repos: repositories{
			records:  records.NewSQLiteRepository(db),
			pending:  pending.NewSQLiteRepository(db),
			metadata: metadata.NewSQLiteRepository(db),
		},
		logger: logger,
	}
}

// NewMemory returns a store that never touches disk.
func NewMemory(logger logging.Logger) *Store {
	return &Store{repos: memoryRepositories(), degraded: true, logger: logger.With("module", "store")}
}

// Degraded reports whether the store runs on the in-memory fallback.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) current() (repositories, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repos, s.degraded
}

func (s *Store) degrade(ctx context.Context, cause error) repositories {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		s.logger.Warn(ctx, "local storage failed, continuing in memory", "error", cause)
		s.repos = memoryRepositories()
		s.degraded = true
	}
	return s.repos
}

// isStorageFailure tells medium failures apart from ordinary outcomes.
func isStorageFailure(err error) bool {
	return err != nil &&
		!errors.Is(err, common.ErrorNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// call runs fn against the active repositories and retries it once on the
// in-memory fallback if the medium fails.
func call[T any](ctx context.Context, s *Store, fn func(repositories) (T, error)) (T, error) {
	repos, degraded := s.current()
	v, err := fn(repos)
	if degraded || !isStorageFailure(err) {
		return v, err
	}
	return fn(s.degrade(ctx, err))
}

func exec(ctx context.Context, s *Store, fn func(repositories) error) error {
	_, err := call(ctx, s, func(r repositories) (struct{}, error) {
		return struct{}{}, fn(r)
	})
	return err
}

// Lazy opens the store on first use and hands out the same instance after.
type Lazy struct {
	once   sync.Once
	path   string
	logger logging.Logger
	store  *Store
}

func NewLazy(path string, logger logging.Logger) *Lazy {
	return &Lazy{path: path, logger: logger}
}

func (l *Lazy) Get(ctx context.Context) *Store {
	l.once.Do(func() {
		l.store = Open(ctx, l.path, l.logger)
	})
	return l.store
}
