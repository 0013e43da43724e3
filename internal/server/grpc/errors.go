package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

func codeOf(err error) codes.Code {
	var (
		verr *common.ValidationError
		rerr *common.RemoteError
		uerr *common.UploadError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, common.ErrInvalidField):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrUnknownCollection):
		return codes.NotFound
	case errors.Is(err, common.ErrRecordGone),
		errors.Is(err, common.ErrSessionActive),
		errors.Is(err, common.ErrSaving),
		errors.Is(err, common.ErrNoSession):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized):
		return codes.Unauthenticated
	case errors.As(err, &uerr):
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			return codes.OutOfRange
		case errors.Is(err, upload.ErrEmpty):
			return codes.InvalidArgument
		}
		return codes.Aborted
	case errors.As(err, &rerr):
		// Unavailable is reserved for transport failures.
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// toStatus converts err to a gRPC status. Field messages and the upload
// fallback travel in the trailer.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := codeOf(err)

	md := metadata.MD{}
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		for name, msg := range verr.Fields {
			md.Set(adminrpc.TrailerFieldPrefix+name, msg)
		}
	}
	var uerr *common.UploadError
	if errors.As(err, &uerr) {
		md.Set(adminrpc.TrailerFallback, "manual_url")
	}
	if len(md) > 0 {
		_ = grpc.SetTrailer(ctx, md)
	}

	msg := err.Error()
	if code == codes.Internal {
		s.logger.Error(ctx, "call failed", "error", err)
		msg = common.ErrorInternal.Error()
	} else if code == codes.Aborted {
		s.logger.Error(ctx, "call failed", "error", err)
	}
	return status.Error(code, msg)
}
