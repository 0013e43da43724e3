package adminrpc

import (
	"context"

	"google.golang.org/grpc"
)

// AdminClient is the client stub of AdminServer.
type AdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *AdminClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *AdminClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, "Logout", in, opts)
}

func (c *AdminClient) Collection(ctx context.Context, in *CollectionRequest, opts ...grpc.CallOption) (*CollectionResponse, error) {
	return invoke[CollectionResponse](ctx, c.cc, "Collection", in, opts)
}

func (c *AdminClient) Activity(ctx context.Context, in *ActivityRequest, opts ...grpc.CallOption) (*ActivityResponse, error) {
	return invoke[ActivityResponse](ctx, c.cc, "Activity", in, opts)
}

func (c *AdminClient) Session(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "Session", in, opts)
}

func (c *AdminClient) BeginCreate(ctx context.Context, in *BeginCreateRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "BeginCreate", in, opts)
}

func (c *AdminClient) BeginEdit(ctx context.Context, in *BeginEditRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "BeginEdit", in, opts)
}

func (c *AdminClient) SetFields(ctx context.Context, in *SetFieldsRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "SetFields", in, opts)
}

func (c *AdminClient) Submit(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SubmitResponse, error) {
	return invoke[SubmitResponse](ctx, c.cc, "Submit", in, opts)
}

func (c *AdminClient) Cancel(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "Cancel", in, opts)
}

func (c *AdminClient) Detach(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "Detach", in, opts)
}

func (c *AdminClient) Upload(ctx context.Context, in *UploadRequest, opts ...grpc.CallOption) (*UploadResponse, error) {
	return invoke[UploadResponse](ctx, c.cc, "Upload", in, opts)
}

func (c *AdminClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	return invoke[RemoveResponse](ctx, c.cc, "Remove", in, opts)
}

func (c *AdminClient) Reorder(ctx context.Context, in *ReorderRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Reorder", in, opts)
}
