package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
	"github.com/dmitrijs2005/gophsite/internal/client/models"
	"github.com/dmitrijs2005/gophsite/internal/common"
	sitemodels "github.com/dmitrijs2005/gophsite/internal/models"
)

// GRPCClient calls the staff gRPC endpoint of the site server.
type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      *adminrpc.AdminClient

	mu          sync.RWMutex
	accessToken string
}

// NewGRPCClient prepares a connection to endpointURL. The connection is
// established lazily on the first call. Extra dial options are appended
// after the defaults.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = adminrpc.NewAdminClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	key := strings.ToLower(common.AuthorizationHeaderName)
	return metadata.AppendToOutgoingContext(ctx, key, common.BearerPrefix+token)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, c.Token())
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *GRPCClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

var httpStatusOf = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusUnprocessableEntity,
	codes.NotFound:           http.StatusNotFound,
	codes.FailedPrecondition: http.StatusConflict,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.OutOfRange:         http.StatusRequestEntityTooLarge,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Aborted:            http.StatusBadGateway,
}

// mapError turns a gRPC status into the same errors the HTTP client
// returns, so callers do not depend on the transport.
func (c *GRPCClient) mapError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}

	code, ok := httpStatusOf[st.Code()]
	if !ok {
		code = http.StatusInternalServerError
	}
	apiErr := &APIError{Status: code, Message: st.Message(), Fields: adminrpc.FieldErrors(trailer)}
	if v := trailer.Get(adminrpc.TrailerFallback); len(v) > 0 {
		apiErr.Fallback = v[0]
	}
	return apiErr
}

func toSession(r *adminrpc.SessionResponse) models.Session {
	return models.Session{
		Mode:        r.Mode,
		TargetID:    r.TargetID,
		Draft:       r.Draft,
		FieldErrors: r.FieldErrors,
		Status:      r.Status,
		Error:       r.Error,
	}
}

func (c *GRPCClient) session(ctx context.Context, call func(context.Context, ...grpc.CallOption) (*adminrpc.SessionResponse, error)) (models.Session, error) {
	var trailer metadata.MD
	resp, err := call(ctx, grpc.Trailer(&trailer))
	if err != nil {
		return models.Session{}, c.mapError(err, trailer)
	}
	return toSession(resp), nil
}

func (c *GRPCClient) Ping(ctx context.Context) (models.Health, error) {
	resp, err := c.client.Ping(ctx, &adminrpc.Empty{})
	if err != nil {
		return models.Health{}, c.mapError(err, nil)
	}
	return models.Health{Status: resp.Status, FeedConnected: resp.FeedConnected}, nil
}

// Login exchanges credentials for a staff token and keeps it for later
// calls.
func (c *GRPCClient) Login(ctx context.Context, username, password string) (string, error) {
	var trailer metadata.MD
	resp, err := c.client.Login(ctx, &adminrpc.LoginRequest{Username: username, Password: password}, grpc.Trailer(&trailer))
	if err != nil {
		return "", c.mapError(err, trailer)
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Logout closes the caller's drafts on the server and forgets the token.
func (c *GRPCClient) Logout(ctx context.Context) error {
	_, err := c.client.Logout(ctx, &adminrpc.Empty{})
	c.SetToken("")
	return c.mapError(err, nil)
}

func (c *GRPCClient) Collection(ctx context.Context, name string) (models.Collection, error) {
	resp, err := c.client.Collection(ctx, &adminrpc.CollectionRequest{Collection: name})
	if err != nil {
		return models.Collection{}, c.mapError(err, nil)
	}
	return models.Collection{
		Collection: resp.Collection,
		Status:     resp.Status,
		Error:      resp.Error,
		Orderable:  resp.Orderable,
		Upload:     resp.Upload,
		Records:    resp.Records,
	}, nil
}

func (c *GRPCClient) Activity(ctx context.Context, limit int) ([]sitemodels.Activity, error) {
	resp, err := c.client.Activity(ctx, &adminrpc.ActivityRequest{Limit: limit})
	if err != nil {
		return nil, c.mapError(err, nil)
	}
	return resp.Activity, nil
}

func (c *GRPCClient) Session(ctx context.Context, collection string) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.Session(ctx, &adminrpc.SessionRequest{Collection: collection}, opts...)
	})
}

func (c *GRPCClient) BeginCreate(ctx context.Context, collection string, defaults sitemodels.Fields) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.BeginCreate(ctx, &adminrpc.BeginCreateRequest{Collection: collection, Defaults: defaults}, opts...)
	})
}

func (c *GRPCClient) BeginEdit(ctx context.Context, collection, id string) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.BeginEdit(ctx, &adminrpc.BeginEditRequest{Collection: collection, ID: id}, opts...)
	})
}

func (c *GRPCClient) SetFields(ctx context.Context, collection string, fields sitemodels.Fields) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.SetFields(ctx, &adminrpc.SetFieldsRequest{Collection: collection, Fields: fields}, opts...)
	})
}

func (c *GRPCClient) Submit(ctx context.Context, collection string) (string, error) {
	var trailer metadata.MD
	resp, err := c.client.Submit(ctx, &adminrpc.SessionRequest{Collection: collection}, grpc.Trailer(&trailer))
	if err != nil {
		return "", c.mapError(err, trailer)
	}
	return resp.ID, nil
}

func (c *GRPCClient) Cancel(ctx context.Context, collection string) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.Cancel(ctx, &adminrpc.SessionRequest{Collection: collection}, opts...)
	})
}

func (c *GRPCClient) Detach(ctx context.Context, collection string) (models.Session, error) {
	return c.session(ctx, func(ctx context.Context, opts ...grpc.CallOption) (*adminrpc.SessionResponse, error) {
		return c.client.Detach(ctx, &adminrpc.SessionRequest{Collection: collection}, opts...)
	})
}

func (c *GRPCClient) Upload(ctx context.Context, collection, filename string, data []byte) (models.UploadResult, error) {
	var trailer metadata.MD
	req := &adminrpc.UploadRequest{Collection: collection, Filename: filename, Data: data}
	resp, err := c.client.Upload(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return models.UploadResult{}, c.mapError(err, trailer)
	}
	return models.UploadResult{
		Task: models.UploadTask{
			Size:        resp.Task.Size,
			Path:        resp.Task.Path,
			ContentType: resp.Task.ContentType,
			Status:      resp.Task.Status,
			URL:         resp.Task.URL,
		},
		Field: resp.Field,
	}, nil
}

// Remove deletes a record. Without confirm the server declines and removed
// is false.
func (c *GRPCClient) Remove(ctx context.Context, collection, id string, confirm bool) (bool, error) {
	resp, err := c.client.Remove(ctx, &adminrpc.RemoveRequest{Collection: collection, ID: id, Confirm: confirm})
	if err != nil {
		return false, c.mapError(err, nil)
	}
	return resp.Removed && !resp.Declined, nil
}

func (c *GRPCClient) Reorder(ctx context.Context, collection string, ids []string) error {
	var trailer metadata.MD
	_, err := c.client.Reorder(ctx, &adminrpc.ReorderRequest{Collection: collection, IDs: ids}, grpc.Trailer(&trailer))
	return c.mapError(err, trailer)
}
