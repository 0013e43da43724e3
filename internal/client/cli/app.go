package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsite/internal/client/client"
	"github.com/dmitrijs2005/gophsite/internal/client/config"
	"github.com/dmitrijs2005/gophsite/internal/client/models"
	"github.com/dmitrijs2005/gophsite/internal/client/state"
	"github.com/dmitrijs2005/gophsite/internal/filex"
	sitemodels "github.com/dmitrijs2005/gophsite/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeDegraded means the server answers but its change feed is down, so
	// lists may lag behind writes.
	ModeDegraded Mode = "degraded"
)

// API is the part of the site client the CLI uses. Both the HTTP and the
// gRPC client implement it.
type API interface {
	SetToken(token string)
	Token() string
	Ping(ctx context.Context) (models.Health, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	Collection(ctx context.Context, name string) (models.Collection, error)
	Activity(ctx context.Context, limit int) ([]sitemodels.Activity, error)
	Session(ctx context.Context, collection string) (models.Session, error)
	BeginCreate(ctx context.Context, collection string, defaults sitemodels.Fields) (models.Session, error)
	BeginEdit(ctx context.Context, collection, id string) (models.Session, error)
	SetFields(ctx context.Context, collection string, fields sitemodels.Fields) (models.Session, error)
	Submit(ctx context.Context, collection string) (string, error)
	Cancel(ctx context.Context, collection string) (models.Session, error)
	Detach(ctx context.Context, collection string) (models.Session, error)
	Upload(ctx context.Context, collection, filename string, data []byte) (models.UploadResult, error)
	Remove(ctx context.Context, collection, id string, confirm bool) (bool, error)
	Reorder(ctx context.Context, collection string, ids []string) error
}

// StateStore persists the login and the selected collection.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SaveLogin(ctx context.Context, username, token string) error
	ClearLogin(ctx context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	api      API
	closeAPI func() error
	state    StateStore
	reader   *bufio.Reader
	out      io.Writer

	mu         sync.Mutex
	Mode       Mode
	userName   string
	collection string
}

// NewApp opens the state file and restores a saved login.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := filex.EnsureParentDir(c.StatePath); err != nil {
		return nil, err
	}
	st, err := state.Open(ctx, c.StatePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing state: %w", err)
	}

	api, closeAPI, err := newAPI(c)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("error initializing client: %w", err)
	}

	app := &App{
		config:   c,
		api:      api,
		closeAPI: closeAPI,
		state:    st,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if err := app.restore(ctx); err != nil {
		_ = st.Close()
		_ = closeAPI()
		return nil, err
	}
	return app, nil
}

func newAPI(c *config.Config) (API, func() error, error) {
	switch c.Transport {
	case "", config.TransportHTTP:
		return client.NewHTTPClient(c.ServerURL, c.RequestTimeout), func() error { return nil }, nil
	case config.TransportGRPC:
		gc, err := client.NewGRPCClient(c.GRPCAddr, c.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return gc, gc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", c.Transport)
	}
}

func (a *App) restore(ctx context.Context) error {
	token, err := a.state.Get(ctx, state.KeyToken)
	if err != nil {
		return err
	}
	user, err := a.state.Get(ctx, state.KeyUsername)
	if err != nil {
		return err
	}
	col, err := a.state.Get(ctx, state.KeyCollection)
	if err != nil {
		return err
	}

	a.api.SetToken(token)
	a.userName = user
	a.collection = col
	return nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// Run blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.state.Close()
	if a.closeAPI != nil {
		defer a.closeAPI()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to the site admin CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// StartOnlineStatusWatcher pings the server every interval and updates
// Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

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
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	h, err := a.api.Ping(ctx)
	switch {
	case err != nil:
		a.setMode(ModeOffline)
	case !h.FeedConnected:
		a.setMode(ModeDegraded)
	default:
		a.setMode(ModeOnline)
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if m := a.mode(); m != "" {
		s += string(m)
	}
	if a.collection != "" {
		s += " " + a.collection
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
