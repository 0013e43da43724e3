// Package upload turns raw file bytes into a stored blob with a public URL.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/blob"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/metrics"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// DefaultMaxSize is used when the runner is built with a non-positive limit.
const DefaultMaxSize = 10 << 20

// Status of an upload task.
type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
	StatusFailed   Status = "failed"
)

var (
	ErrEmpty    = errors.New("empty file")
	ErrTooLarge = errors.New("file too large")
)

// Task describes one upload attempt.
type Task struct {
	Size        int    `json:"size"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Status      Status `json:"status"`
	URL         string `json:"url,omitempty"`
	Err         error  `json:"-"`
}

var newToken = func() string {
	return uuid.NewString()
}

// Runner uploads files into one bucket.
type Runner struct {
	store    blob.Store
	bucket   string
	maxSize  int
	recorder activity.Recorder
	logger   logging.Logger
}

func NewRunner(store blob.Store, bucket string, maxSize int, recorder activity.Recorder, logger logging.Logger) *Runner {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Runner{
		store:    store,
		bucket:   bucket,
		maxSize:  maxSize,
		recorder: recorder,
		logger:   logger.With("component", "upload"),
	}
}

// ObjectPath builds "<folder>/<random token><lower-cased extension>".
func ObjectPath(folder, filename string) string {
	name := newToken() + strings.ToLower(path.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// Upload stores data and returns the finished task. On failure the task is
// returned together with a *common.UploadError; callers fall back to a
// manually entered URL.
func (r *Runner) Upload(ctx context.Context, data []byte, filename, folder string) (Task, error) {
	task := Task{Size: len(data), Status: StatusPending}

	switch {
	case len(data) == 0:
		return r.fail(ctx, task, ErrEmpty)
	case len(data) > r.maxSize:
		return r.fail(ctx, task, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), r.maxSize))
	}

	task.Path = ObjectPath(folder, filename)
	task.ContentType = http.DetectContentType(data)

	if err := r.store.UploadBlob(ctx, r.bucket, task.Path, data, task.ContentType); err != nil {
		return r.fail(ctx, task, err)
	}

	task.Status = StatusUploaded
	task.URL = r.store.PublicURL(r.bucket, task.Path)
	metrics.ObserveUpload(metrics.ResultOK, task.Size)

	r.logger.Info(ctx, "file uploaded", "path", task.Path, "size", task.Size, "content_type", task.ContentType)
	r.recorder.Record(models.ActionUpload, folder, task.Path, models.Fields{
		"filename": filename,
		"url":      task.URL,
		"size":     task.Size,
	})
	return task, nil
}

func (r *Runner) fail(ctx context.Context, task Task, err error) (Task, error) {
	task.Status = StatusFailed
	task.Err = &common.UploadError{Path: task.Path, Err: err}
	metrics.ObserveUpload(metrics.ResultError, task.Size)
	r.logger.Warn(ctx, "upload failed", "path", task.Path, "size", task.Size, "error", err)
	return task, task.Err
}
