// Package models defines the responses the admin CLI reads from the site
// server.
package models

import (
	"github.com/dmitrijs2005/gophsite/internal/models"
)

// Collection is the staff view of one collection.
type Collection struct {
	Collection string          `json:"collection"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Orderable  bool            `json:"orderable"`
	Upload     bool            `json:"upload"`
	Records    []models.Record `json:"records"`
}

// Session is the state of the caller's draft for one collection.
type Session struct {
	Mode        string            `json:"mode"`
	TargetID    string            `json:"target_id,omitempty"`
	Draft       models.Fields     `json:"draft,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
}

// Open reports whether a draft is being edited.
func (s Session) Open() bool {
	return s.Mode != "" && s.Mode != "none"
}

// UploadTask describes a finished upload.
type UploadTask struct {
	Size        int    `json:"size"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	URL         string `json:"url,omitempty"`
}

// UploadResult is returned after a file was stored and written into the
// draft.
type UploadResult struct {
	Task  UploadTask `json:"task"`
	Field string     `json:"field"`
}

// Health is the server's liveness report.
type Health struct {
	Status        string `json:"status"`
	FeedConnected bool   `json:"feed_connected"`
}
