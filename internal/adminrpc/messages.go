package adminrpc

import "github.com/dmitrijs2005/gophsite/internal/models"

type Empty struct{}

type PingResponse struct {
	Status        string `json:"status"`
	FeedConnected bool   `json:"feed_connected"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	Closed int `json:"closed"`
}

type CollectionRequest struct {
	Collection string `json:"collection"`
}

type CollectionResponse struct {
	Collection string          `json:"collection"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Orderable  bool            `json:"orderable"`
	Upload     bool            `json:"upload"`
	Records    []models.Record `json:"records"`
}

type ActivityRequest struct {
	Limit int `json:"limit"`
}

type ActivityResponse struct {
	Activity []models.Activity `json:"activity"`
}

// SessionRequest names the collection whose draft is addressed.
type SessionRequest struct {
	Collection string `json:"collection"`
}

type SessionResponse struct {
	Mode        string            `json:"mode"`
	TargetID    string            `json:"target_id,omitempty"`
	Draft       models.Fields     `json:"draft,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
}

type BeginCreateRequest struct {
	Collection string        `json:"collection"`
	Defaults   models.Fields `json:"defaults,omitempty"`
}

type BeginEditRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type SetFieldsRequest struct {
	Collection string        `json:"collection"`
	Fields     models.Fields `json:"fields"`
}

type SubmitResponse struct {
	ID string `json:"id"`
}

// UploadRequest carries the whole file; Data is base64 on the wire.
type UploadRequest struct {
	Collection string `json:"collection"`
	Filename   string `json:"filename"`
	Data       []byte `json:"data"`
}

type UploadTask struct {
	Size        int    `json:"size"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	URL         string `json:"url,omitempty"`
}

type UploadResponse struct {
	Task  UploadTask `json:"task"`
	Field string     `json:"field"`
}

type RemoveRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Confirm    bool   `json:"confirm"`
}

type RemoveResponse struct {
	Removed  bool `json:"removed"`
	Declined bool `json:"declined,omitempty"`
}

type ReorderRequest struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
}
