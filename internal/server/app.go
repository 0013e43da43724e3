// Package server wires the site server: the remote store, the change feed,
// the live collections, the staff workflow, the HTTP API and the staff gRPC
// endpoint. It handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/blob"
	"github.com/dmitrijs2005/gophsite/internal/changefeed"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/remote"
	"github.com/dmitrijs2005/gophsite/internal/server/auth"
	"github.com/dmitrijs2005/gophsite/internal/server/config"
	grpcserver "github.com/dmitrijs2005/gophsite/internal/server/grpc"
	"github.com/dmitrijs2005/gophsite/internal/server/httpapi"
	"github.com/dmitrijs2005/gophsite/internal/server/sessions"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

const (
	shutdownTimeout = 10 * time.Second

	devStaffUser     = "admin"
	devStaffPassword = "admin"
)

// storeBackend is what the server needs from the remote store.
type storeBackend interface {
	remote.Store
	remote.ActivityLog
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	feed     *changefeed.Channel
	activity *activity.Log
	registry *content.Registry
	handler  http.Handler
	rpc      *grpcserver.GRPCServer
}

// NewApp connects the backends selected by c. A DatabaseDSN of "memory"
// runs everything in process.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	var (
		store    storeBackend
		blobs    blob.Store
		listener changefeed.Listener
	)

	if c.InMemory() {
		mem := remote.NewMemoryStore()
		store, listener = mem, mem
		blobs = blob.NewMemoryStore(c.S3PublicBaseURL)
		logger.Warn(ctx, "running with in-memory backends, data is not persisted")
	} else {
		db, err := remote.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := remote.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		app.db = db
		store = remote.NewPostgresStore(db)
		listener = changefeed.NewPgListener(c.DatabaseDSN, "", logger)
		blobs = blob.NewS3Store(blob.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			PublicBase:   c.S3PublicBaseURL,
		})
	}

	accounts := c.StaffAccounts
	if len(accounts) == 0 && c.InMemory() {
		hash, err := auth.HashPassword(devStaffPassword)
		if err != nil {
			return nil, fmt.Errorf("dev account: %w", err)
		}
		accounts = []config.StaffAccount{{Username: devStaffUser, PasswordHash: hash}}
		logger.Warn(ctx, "no staff accounts configured, using development login", "username", devStaffUser)
	}

	app.feed = changefeed.New(listener, logger)
	app.activity = activity.New(store, logger, activity.DefaultQueueSize)
	app.registry = content.NewRegistry(store, app.feed, content.Settings{
		CoalesceWindow: c.CoalesceWindow,
		RotateInterval: c.RotateInterval,
	}, logger)

	// One session manager serves both transports.
	mgr := sessions.NewManager(store, app.activity, logger)
	authSvc := auth.NewService(accounts, c.SecretKey, c.AccessTokenValidityDuration)
	uploads := upload.NewRunner(blobs, c.S3Bucket, c.UploadMaxBytes, app.activity, logger)

	app.handler = httpapi.NewRouter(httpapi.Deps{
		Registry:           app.registry,
		Store:              store,
		Activity:           app.activity,
		Sessions:           mgr,
		Auth:               authSvc,
		Uploads:            uploads,
		Feed:               app.feed,
		Logger:             logger,
		LoginRatePerMinute: c.LoginRatePerMinute,
		MaxUploadBytes:     c.UploadMaxBytes,
	})

	if c.EndpointAddrGRPC != "" {
		app.rpc = grpcserver.NewGRPCServer(c.EndpointAddrGRPC, grpcserver.Deps{
			Registry:           app.registry,
			Store:              store,
			Activity:           app.activity,
			Sessions:           mgr,
			Auth:               authSvc,
			Uploads:            uploads,
			Feed:               app.feed,
			Logger:             logger,
			LoginRatePerMinute: c.LoginRatePerMinute,
			MaxUploadBytes:     c.UploadMaxBytes,
		})
	}

	return app, nil
}

// Handler returns the HTTP API.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is done or a signal arrives, then drains the activity
// queue and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr)
	app.initSignalHandler(cancelFunc)

	ln, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.HTTPAddr, err)
	}

	var rpcLn net.Listener
	if app.rpc != nil {
		rpcLn, err = net.Listen("tcp", app.config.EndpointAddrGRPC)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen %s: %w", app.config.EndpointAddrGRPC, err)
		}
	}
	return app.serve(ctx, ln, rpcLn)
}

// serve runs every component on the given listeners. rpcLn may be nil when
// the gRPC endpoint is disabled.
func (app *App) serve(ctx context.Context, ln, rpcLn net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.feed.Run(ctx) })
	g.Go(func() error { return app.activity.Run(ctx) })

	app.registry.Start(ctx)
	g.Go(func() error { return app.registry.Run(ctx) })

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if app.rpc != nil && rpcLn != nil {
		g.Go(func() error {
			if err := app.rpc.Serve(ctx, rpcLn); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	<-app.activity.Done()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close failed", "error", cerr)
		}
	}
	app.logger.Info(ctx, "app stopped")
	return err
}
