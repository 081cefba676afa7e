package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/config"
	"github.com/dmitrijs2005/pocketschool/internal/client/connectivity"
	"github.com/dmitrijs2005/pocketschool/internal/client/services"
	"github.com/dmitrijs2005/pocketschool/internal/client/session"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
)

// probeTimeout bounds a single reachability probe.
const probeTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage *store.Lazy
	store   *store.Store
	session *session.Session
	api     client.Client
	prober  connectivity.Prober
	monitor *connectivity.Monitor
	sync    *services.SyncService
	auth    *services.AuthService
	proj    *services.Projection
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Format: c.LogFormat, Level: c.LogLevel, Output: os.Stderr})
	if err != nil {
		return nil, err
	}

	storage := store.NewLazy(c.DBPath, logger)
	st := storage.Get(ctx)
	sess := session.New(st.Metadata())

	api, err := client.NewHTTPClient(c.APIBaseURL, sess, c.RequestTimeout)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		logger:  logger,
		storage: storage,
		store:   st,
		session: sess,
		api:     api,
		prober:  api,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{st.Close},
	}

	if c.HealthAddr != "" {
		hp, err := client.NewHealthProber(c.HealthAddr)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.prober = hp
		a.closers = append(a.closers, hp.Close)
	}

	a.monitor = connectivity.New(false, logger)
	a.sync = services.NewSyncService(api, st, a.monitor, logger)
	a.auth = services.NewAuthService(api, sess, st, logger)
	a.proj = services.NewProjection(services.Deps{
		API: api, Store: st, Sync: a.sync, Auth: a.auth, Monitor: a.monitor, Logger: logger,
	})
	return a, nil
}

// Close releases the store and network resources.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run restores the session, starts the connectivity watcher and blocks in
// the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Load(ctx); err != nil {
		a.logger.Warn(ctx, "failed to restore session", "error", err)
	}

	stop := a.proj.Start(ctx)
	defer stop()

	a.monitor.SetOnline(a.prober.Probe(ctx) == nil)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.monitor.Watch(watchCtx, a.prober, a.config.OnlineCheckInterval, probeTimeout)

	fmt.Fprintln(a.out, "Welcome to PocketSchool (type 'help' for commands)")
	// going online already replayed and refreshed
	if a.isLoggedIn() && !a.monitor.IsOnline() {
		if err := a.proj.Refresh(ctx); err != nil {
			fmt.Fprintln(a.out, services.Message(err))
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.auth.Authenticated()
}

func (a *App) getStatus() string {
	s := a.proj.Snapshot()

	status := "offline"
	if s.Online {
		status = "online"
	}
	if s.User != nil {
		status = s.User.DisplayName + " " + status
	}
	if s.Pending > 0 {
		status = fmt.Sprintf("%s, %d pending", status, s.Pending)
	}
	return "(" + status + ")"
}
