package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError is a local, pre-network failure scoped to draft fields.
// Fields maps a field name to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RemoteError wraps a network, auth or server failure of the remote store.
// It is retryable by re-invoking the same action.
type RemoteError struct {
	Op         string // "select", "insert", "update", "delete", "upload"
	Collection string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError wraps err unless it already is a RemoteError or a
// not-found error, which callers match directly.
func NewRemoteError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) || errors.Is(err, ErrorNotFound) {
		return err
	}
	return &RemoteError{Op: op, Collection: collection, Err: err}
}

// UploadError is a non-fatal image upload failure. The admin surface falls
// back to a manually entered address.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return fmt.Sprintf("upload of %s failed: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
