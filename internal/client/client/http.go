package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gophsite/internal/client/models"
	"github.com/dmitrijs2005/gophsite/internal/common"
	sitemodels "github.com/dmitrijs2005/gophsite/internal/models"
)

// HTTPClient calls the site server.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the staff token sent with admin calls.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error    string            `json:"error"`
			Fields   map[string]string `json:"fields"`
			Fallback string            `json:"fallback"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error
			apiErr.Fields = body.Fields
			apiErr.Fallback = body.Fallback
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func collectionPath(name string) string {
	return "/api/admin/collections/" + url.PathEscape(name)
}

func sessionPath(name, action string) string {
	p := collectionPath(name) + "/session"
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *HTTPClient) Ping(ctx context.Context) (models.Health, error) {
	var h models.Health
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &h)
	return h, err
}

// Login exchanges credentials for a staff token and keeps it for later
// calls.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", in, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Logout closes the caller's drafts on the server and forgets the token.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *HTTPClient) Collection(ctx context.Context, name string) (models.Collection, error) {
	var col models.Collection
	err := c.do(ctx, http.MethodGet, collectionPath(name), nil, &col)
	return col, err
}

func (c *HTTPClient) Activity(ctx context.Context, limit int) ([]sitemodels.Activity, error) {
	var resp struct {
		Activity []sitemodels.Activity `json:"activity"`
	}
	path := "/api/admin/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Activity, err
}

func (c *HTTPClient) Session(ctx context.Context, collection string) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodGet, sessionPath(collection, ""), nil, &s)
	return s, err
}

func (c *HTTPClient) BeginCreate(ctx context.Context, collection string, defaults sitemodels.Fields) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPost, sessionPath(collection, "create"), map[string]any{"defaults": defaults}, &s)
	return s, err
}

func (c *HTTPClient) BeginEdit(ctx context.Context, collection, id string) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPost, sessionPath(collection, "edit"), map[string]string{"id": id}, &s)
	return s, err
}

func (c *HTTPClient) SetFields(ctx context.Context, collection string, fields sitemodels.Fields) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPatch, sessionPath(collection, "fields"), map[string]any{"fields": fields}, &s)
	return s, err
}

// Submit saves the draft and returns the id of the written record.
func (c *HTTPClient) Submit(ctx context.Context, collection string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, sessionPath(collection, "submit"), nil, &resp)
	return resp.ID, err
}

func (c *HTTPClient) Cancel(ctx context.Context, collection string) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPost, sessionPath(collection, "cancel"), nil, &s)
	return s, err
}

// Detach turns an edit whose record is gone into a create.
func (c *HTTPClient) Detach(ctx context.Context, collection string) (models.Session, error) {
	var s models.Session
	err := c.do(ctx, http.MethodPost, sessionPath(collection, "detach"), nil, &s)
	return s, err
}

// Upload sends a file for the open draft's image field.
func (c *HTTPClient) Upload(ctx context.Context, collection, filename string, data []byte) (models.UploadResult, error) {
	var res models.UploadResult

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return res, err
	}
	if _, err := fw.Write(data); err != nil {
		return res, err
	}
	if err := mw.Close(); err != nil {
		return res, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, sessionPath(collection, "upload"), &buf, mw.FormDataContentType())
	if err != nil {
		return res, err
	}
	err = c.send(req, &res)
	return res, err
}

// Remove deletes a record. Without confirm the server declines and removed
// is false.
func (c *HTTPClient) Remove(ctx context.Context, collection, id string, confirm bool) (bool, error) {
	var resp struct {
		Removed  bool `json:"removed"`
		Declined bool `json:"declined"`
	}
	path := collectionPath(collection) + "/records/" + url.PathEscape(id)
	if confirm {
		path += "?confirm=true"
	}
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Removed && !resp.Declined, nil
}

// Reorder sets the display order to the order of ids.
func (c *HTTPClient) Reorder(ctx context.Context, collection string, ids []string) error {
	return c.do(ctx, http.MethodPut, collectionPath(collection)+"/order", map[string][]string{"ids": ids}, nil)
}

// IsUnavailable reports whether err is a transport failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
