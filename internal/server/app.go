// Package server wires configuration, storage, services and transports into
// a runnable PocketSchool server and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/server/config"
	"github.com/dmitrijs2005/pocketschool/internal/server/httpapi"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pocketschool/internal/server/services"
	"github.com/dmitrijs2005/pocketschool/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/pocketschool/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	handler http.Handler
}

// NewApp opens storage (PostgreSQL when a DSN is configured, memory
// otherwise), runs migrations and builds the HTTP handler.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Format: c.LogFormat, Level: c.LogLevel, JSON: true, Output: os.Stdout})
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		app.db = db
	} else {
		logger.Warn(ctx, "no database configured, data is kept in memory")
		rm = repomanager.NewMemoryRepositoryManager()
	}

	var limiter httpapi.Limiter = httpapi.NewMemoryLimiter()
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warn(ctx, "redis unreachable, rate limits fail open until it recovers", "addr", c.RedisAddr, "err", err)
		}
		limiter = httpapi.NewRedisLimiter(app.redis)
	}

	var archiver services.Archiver
	if c.S3Bucket != "" {
		a, err := storage.NewS3Archiver(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		archiver = a
	}

	us := services.NewUserService(app.db, rm, c)
	cs := services.NewCourseService(app.db, rm)
	es := services.NewExportService(us, cs, archiver, logger)

	gin.SetMode(gin.ReleaseMode)
	app.handler = httpapi.NewRouter(c, httpapi.NewHandler(us, cs, es, logger), limiter)

	return app, nil
}

// Run serves HTTP and gRPC health until ctx is cancelled or either server
// fails, then shuts both down.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer app.close()

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if app.config.GRPCAddr != "" {
		g.Go(func() error {
			return gs.NewGRPCServer(app.config.GRPCAddr, app.logger).Run(gctx)
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "err", err)
	}
	return err
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
	if z, ok := app.logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
}
