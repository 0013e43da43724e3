package adminrpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const ServiceName = "gophsite.admin.AdminService"

// Trailer keys carrying error details the status message cannot hold.
const (
	TrailerFieldPrefix = "field-"
	TrailerFallback    = "fallback"
)

// FullMethod returns the gRPC path of a service method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// AdminServer is the staff editing service.
type AdminServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*LogoutResponse, error)
	Collection(context.Context, *CollectionRequest) (*CollectionResponse, error)
	Activity(context.Context, *ActivityRequest) (*ActivityResponse, error)
	Session(context.Context, *SessionRequest) (*SessionResponse, error)
	BeginCreate(context.Context, *BeginCreateRequest) (*SessionResponse, error)
	BeginEdit(context.Context, *BeginEditRequest) (*SessionResponse, error)
	SetFields(context.Context, *SetFieldsRequest) (*SessionResponse, error)
	Submit(context.Context, *SessionRequest) (*SubmitResponse, error)
	Cancel(context.Context, *SessionRequest) (*SessionResponse, error)
	Detach(context.Context, *SessionRequest) (*SessionResponse, error)
	Upload(context.Context, *UploadRequest) (*UploadResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	Reorder(context.Context, *ReorderRequest) (*Empty, error)
}

func unary[Req, Resp any](name string, call func(AdminServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AdminServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AdminServiceDesc is registered with a grpc.Server by RegisterAdminServer.
var AdminServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", AdminServer.Ping),
		unary("Login", AdminServer.Login),
		unary("Logout", AdminServer.Logout),
		unary("Collection", AdminServer.Collection),
		unary("Activity", AdminServer.Activity),
		unary("Session", AdminServer.Session),
		unary("BeginCreate", AdminServer.BeginCreate),
		unary("BeginEdit", AdminServer.BeginEdit),
		unary("SetFields", AdminServer.SetFields),
		unary("Submit", AdminServer.Submit),
		unary("Cancel", AdminServer.Cancel),
		unary("Detach", AdminServer.Detach),
		unary("Upload", AdminServer.Upload),
		unary("Remove", AdminServer.Remove),
		unary("Reorder", AdminServer.Reorder),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adminrpc",
}

func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&AdminServiceDesc, srv)
}

// FieldErrors collects the per-field messages from a call trailer.
func FieldErrors(md metadata.MD) map[string]string {
	var fields map[string]string
	for key, values := range md {
		name, ok := strings.CutPrefix(key, TrailerFieldPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[name] = values[0]
	}
	return fields
}
