package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/config"
	"github.com/dmitrijs2005/balancebuddy/internal/client/services"
	"github.com/dmitrijs2005/balancebuddy/internal/client/supabase"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	authService    services.AuthService
	taskService    services.TaskService
	buddyService   services.BuddyService
	shopService    services.ShopService
	journalService services.JournalService

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex

	mu       sync.RWMutex
	mode     Mode
	email    string
	loggedIn bool
}

// NewApp opens the local cache and wires the backend client and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init local cache: %w", err)
	}
	repos := client.NewRepositories(db)

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	sb, err := supabase.New(supabase.Config{
		URL:        c.SupabaseURL,
		APIKey:     c.SupabaseAnonKey,
		HTTPClient: httpClient,
		Logger:     log.With("component", "supabase"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	backend := client.NewSupabaseBackend(sb, log)
	renderer := avatar.NewRenderer(c.AvatarAPIURL, httpClient)

	return &App{
		config:         c,
		log:            log,
		db:             db,
		authService:    services.NewAuthService(backend, repos.Metadata, log),
		taskService:    services.NewTaskService(backend, log),
		buddyService:   services.NewBuddyService(backend, repos.Metadata, renderer, log),
		shopService:    services.NewShopService(backend, repos.Catalog, renderer, c.CatalogTTL, log),
		journalService: services.NewJournalService(backend),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// println writes a line of user-facing output. Realtime callbacks print from
// other goroutines, so writes are serialized.
func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.println(fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) setUser(email string, loggedIn bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.email = email
	a.loggedIn = loggedIn
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loggedIn
}

// status is the prompt decoration: "(email mode)".
func (a *App) status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.email
	if a.mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if s == "" {
		return ""
	}
	return "(" + s + ") "
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode accordingly until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.authService.Ping(pctx)
	cancel()

	if err != nil {
		a.log.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// withTimeout bounds one command's remote calls.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
