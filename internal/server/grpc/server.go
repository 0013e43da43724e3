// Package grpc serves the staff editing workflow to the admin CLI over gRPC.
// It carries the same operations as the admin HTTP routes and shares their
// collaborators.
package grpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
	"github.com/dmitrijs2005/gophsite/internal/server/auth"
	"github.com/dmitrijs2005/gophsite/internal/server/sessions"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

// ActivityFeed records and lists audit entries.
type ActivityFeed interface {
	activity.Recorder
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

// FeedStatus reports the change feed connection.
type FeedStatus interface {
	Connected() bool
}

type Deps struct {
	Registry           *content.Registry
	Store              remote.Store
	Activity           ActivityFeed
	Sessions           *sessions.Manager
	Auth               *auth.Service
	Uploads            *upload.Runner
	Feed               FeedStatus
	Logger             logging.Logger
	LoginRatePerMinute int
	MaxUploadBytes     int
}

type GRPCServer struct {
	Deps
	address string
	logger  logging.Logger
	limiter *auth.LoginLimiter
}

func NewGRPCServer(address string, d Deps) *GRPCServer {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = upload.DefaultMaxSize
	}
	return &GRPCServer{
		Deps:    d,
		address: address,
		logger:  d.Logger.With("module", "grpc_server"),
		limiter: auth.NewLoginLimiter(d.LoginRatePerMinute),
	}
}

// NewServer builds a grpc.Server with the admin service and the token
// interceptor registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	// Upload bodies travel base64 encoded inside JSON.
	maxMsg := s.MaxUploadBytes*4/3 + 64<<10

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(maxMsg),
	)
	adminrpc.RegisterAdminServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on ln until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
