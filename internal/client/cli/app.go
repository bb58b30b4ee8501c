package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/config"
	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/flash"
	"github.com/dmitrijs2005/hhblog/internal/client/services"
	"github.com/dmitrijs2005/hhblog/internal/client/session"
	"github.com/dmitrijs2005/hhblog/internal/client/storage"
	"github.com/dmitrijs2005/hhblog/internal/filex"
	"github.com/dmitrijs2005/hhblog/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// healthTimeout bounds a single /health probe.
const healthTimeout = 3 * time.Second

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	store  *storage.Store
	bus    *events.Bus
	flash  *flash.Flash
	now    func() time.Time

	resolver      *session.Resolver
	authService   services.AuthService
	posts         *services.PostService
	articles      *services.ArticleService
	categories    *services.CategoryService
	notifications *services.NotificationService
	account       *services.AccountService
	badge         *services.UnreadBadge

	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	mode  Mode
	page  *services.PostPage
	retry func(ctx context.Context)
}

// NewApp opens the local store under c.DataDir and wires the services to
// the API at c.APIBaseURL.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	path, err := filex.DataFile(c.DataDir, storage.FileName)
	if err != nil {
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, storage.DSN(path))
	if err != nil {
		log.Error(ctx, "error initializing database", "path", path, "error", err)
		return nil, err
	}

	store := storage.New(db, log)
	api := client.New(c.APIBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "api")))

	return newApp(c, log, db, store, api, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, store *storage.Store, api client.Client, r *bufio.Reader, w io.Writer) *App {
	a := &App{
		config: c,
		log:    log,
		db:     db,
		store:  store,
		bus:    events.NewBus(),
		flash:  flash.New(),
		now:    time.Now,
		reader: r,
		out:    w,
	}

	deps := services.Deps{
		API:       api,
		Store:     store,
		Bus:       a.bus,
		Flash:     a.flash,
		Log:       log,
		ToastTTL:  c.ToastTTL,
		BannerTTL: c.BannerTTL,
		Now:       func() time.Time { return a.now() },
	}

	a.resolver = session.NewResolver(api, store, a.bus, log.With("component", "session"))
	a.authService = services.NewAuthService(deps)
	a.posts = services.NewPostService(deps)
	a.articles = services.NewArticleService(deps)
	a.categories = services.NewCategoryService(deps)
	a.notifications = services.NewNotificationService(deps, a.resolver)
	a.account = services.NewAccountService(deps)
	a.badge = services.NewUnreadBadge(deps)
	return a
}

// Close releases the local store.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// attach subscribes the long-lived components to the event bus.
func (a *App) attach(ctx context.Context) func() {
	unsubs := []func(){
		a.resolver.Attach(ctx),
		a.badge.Attach(ctx),
		a.notifications.Attach(ctx),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Run resolves the stored session, starts the background watchers and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer a.attach(ctx)()

	if _, err := a.resolver.Resolve(ctx); err != nil {
		a.log.Warn(ctx, "could not verify stored session", "error", err)
	}
	a.badge.Refresh(ctx)
	a.checkHealth(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)
	go func() {
		w := storage.NewWatcher(a.db, a.bus, a.config.StoragePollInterval, a.log.With("component", "watcher"))
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error(ctx, "storage watcher stopped", "error", err)
		}
	}()

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.resolver.State().Authenticated()
}

func (a *App) isAdmin() bool {
	return a.resolver.State().IsAdmin()
}

func (a *App) checkHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	err := a.authService.Health(ctx)
	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
	return err
}

// StartOnlineStatusWatcher probes the API every interval and switches the
// mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.checkHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Health probes the API and updates the mode.
func (a *App) Health(ctx context.Context) error {
	if err := a.checkHealth(ctx); err != nil {
		a.println(errorStyle.Render(fmt.Sprintf("API at %s is unreachable.", a.config.APIBaseURL)))
		return nil
	}
	a.println(successStyle.Render(fmt.Sprintf("API at %s is up.", a.config.APIBaseURL)))
	return nil
}
