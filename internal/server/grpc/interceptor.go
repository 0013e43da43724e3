package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
	"github.com/dmitrijs2005/gophsite/internal/common"
)

type ctxKey string

const staffKey ctxKey = "staff"

var publicMethods = map[string]bool{
	adminrpc.FullMethod("Ping"):  true,
	adminrpc.FullMethod("Login"): true,
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(strings.ToLower(common.AuthorizationHeaderName))
	if len(values) == 0 {
		return ""
	}
	token, _ := strings.CutPrefix(values[0], common.BearerPrefix)
	return token
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == adminrpc.FullMethod("Login") && !s.limiter.Allow(clientAddr(ctx)) {
		s.logger.Warn(ctx, "login rate limited", "client", clientAddr(ctx))
		return nil, status.Error(codes.ResourceExhausted, "too many login attempts")
	}
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromContext(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.Auth.Authenticate(accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	ctx = context.WithValue(ctx, staffKey, user)
	return handler(ctx, req)
}

func staffUser(ctx context.Context) string {
	user, _ := ctx.Value(staffKey).(string)
	return user
}

func clientAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
