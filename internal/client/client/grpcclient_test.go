package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
)

// fakeAdmin answers the calls a test overrides; the rest panic.
type fakeAdmin struct {
	adminrpc.AdminServer

	auth    string
	removed *adminrpc.RemoveRequest
}

func (f *fakeAdmin) Login(ctx context.Context, in *adminrpc.LoginRequest) (*adminrpc.LoginResponse, error) {
	if in.Password != "pw" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return &adminrpc.LoginResponse{Token: "tok"}, nil
}

func (f *fakeAdmin) Session(ctx context.Context, in *adminrpc.SessionRequest) (*adminrpc.SessionResponse, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get("authorization"); len(v) > 0 {
		f.auth = v[0]
	}
	return &adminrpc.SessionResponse{Mode: "editing", TargetID: "s1", Status: "ready"}, nil
}

func (f *fakeAdmin) Submit(ctx context.Context, in *adminrpc.SessionRequest) (*adminrpc.SubmitResponse, error) {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(adminrpc.TrailerFieldPrefix+"name", "required"))
	return nil, status.Error(codes.InvalidArgument, "validation failed")
}

func (f *fakeAdmin) Upload(ctx context.Context, in *adminrpc.UploadRequest) (*adminrpc.UploadResponse, error) {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(adminrpc.TrailerFallback, "paste a link instead"))
	return nil, status.Error(codes.Aborted, "upload failed")
}

func (f *fakeAdmin) Remove(ctx context.Context, in *adminrpc.RemoveRequest) (*adminrpc.RemoveResponse, error) {
	f.removed = in
	if !in.Confirm {
		return &adminrpc.RemoveResponse{Declined: true}, nil
	}
	return &adminrpc.RemoveResponse{Removed: true}, nil
}

func newGRPCTestClient(t *testing.T) (*GRPCClient, *fakeAdmin) {
	t.Helper()
	ln := bufconn.Listen(1 << 20)
	fake := &fakeAdmin{}
	srv := grpc.NewServer()
	adminrpc.RegisterAdminServer(srv, fake)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ln.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}

func TestGRPCClient_LoginStoresTokenAndSendsIt(t *testing.T) {
	c, fake := newGRPCTestClient(t)
	ctx := context.Background()

	tok, err := c.Login(ctx, "ann", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, "tok", c.Token())

	s, err := c.Session(ctx, "services")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.TargetID)
	assert.True(t, s.Open())
	assert.Equal(t, "Bearer tok", fake.auth)
}

func TestGRPCClient_LoginRejected(t *testing.T) {
	c, _ := newGRPCTestClient(t)

	_, err := c.Login(context.Background(), "ann", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())
}

func TestGRPCClient_FieldErrorsFromTrailer(t *testing.T) {
	c, _ := newGRPCTestClient(t)

	_, err := c.Submit(context.Background(), "services")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, map[string]string{"name": "required"}, apiErr.Fields)
}

func TestGRPCClient_UploadFallback(t *testing.T) {
	c, _ := newGRPCTestClient(t)

	_, err := c.Upload(context.Background(), "team_members", "a.png", []byte("x"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "paste a link instead", apiErr.Fallback)
	assert.False(t, IsUnavailable(err))
}

func TestGRPCClient_RemoveDeclined(t *testing.T) {
	c, fake := newGRPCTestClient(t)
	ctx := context.Background()

	removed, err := c.Remove(ctx, "services", "s1", false)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, "s1", fake.removed.ID)

	removed, err = c.Remove(ctx, "services", "s1", true)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestGRPCClient_ServerDown(t *testing.T) {
	c, err := NewGRPCClient("passthrough:///down", 200*time.Millisecond,
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return nil, errors.New("refused")
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}
