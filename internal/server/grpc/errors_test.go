package grpc

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", &common.ValidationError{Fields: map[string]string{"title": "required"}}, codes.InvalidArgument},
		{"invalid field", fmt.Errorf("set: %w", common.ErrInvalidField), codes.InvalidArgument},
		{"not found", common.ErrorNotFound, codes.NotFound},
		{"unknown collection", common.ErrUnknownCollection, codes.NotFound},
		{"record gone", common.ErrRecordGone, codes.FailedPrecondition},
		{"session active", common.ErrSessionActive, codes.FailedPrecondition},
		{"saving", common.ErrSaving, codes.FailedPrecondition},
		{"no session", common.ErrNoSession, codes.FailedPrecondition},
		{"bad token", common.ErrInvalidToken, codes.Unauthenticated},
		{"bad credentials", common.ErrInvalidCredentials, codes.Unauthenticated},
		{"upload too large", &common.UploadError{Err: upload.ErrTooLarge}, codes.OutOfRange},
		{"upload empty", &common.UploadError{Err: upload.ErrEmpty}, codes.InvalidArgument},
		{"upload store failure", &common.UploadError{Err: errors.New("s3 down")}, codes.Aborted},
		{"remote failure", &common.RemoteError{Op: "insert", Err: errors.New("conn reset")}, codes.Aborted},
		{"anything else", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeOf(tt.err); got != tt.want {
				t.Fatalf("codeOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
