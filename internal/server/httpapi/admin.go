package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophsite/internal/collection"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/editor"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

const defaultActivityLimit = 50

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminCollectionResponse struct {
	Collection string            `json:"collection"`
	Status     collection.Status `json:"status"`
	Error      string            `json:"error,omitempty"`
	Orderable  bool              `json:"orderable"`
	Upload     bool              `json:"upload"`
	Records    []models.Record   `json:"records"`
}

type sessionResponse struct {
	editor.Session
	Error string `json:"error,omitempty"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Logger.Warn(c.Request.Context(), "staff login failed", "username", req.Username)
		h.writeError(c, err)
		return
	}
	h.Logger.Info(c.Request.Context(), "staff logged in", "username", req.Username)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) logout(c *gin.Context) {
	n := h.Sessions.Close(staffUser(c))
	c.JSON(http.StatusOK, gin.H{"closed": n})
}

func (h *Handler) listActivity(c *gin.Context) {
	limit := defaultActivityLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.Activity.Recent(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

func (h *Handler) entry(c *gin.Context) (*content.Entry, bool) {
	e, err := h.Registry.Get(c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return e, true
}

func (h *Handler) listAdmin(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}

	v := e.Controller.View()
	records := make([]models.Record, len(v.Records))
	for i, it := range v.Records {
		records[i] = it.Record
	}
	c.JSON(http.StatusOK, adminCollectionResponse{
		Collection: v.Collection,
		Status:     v.Status,
		Error:      viewError(v),
		Orderable:  e.Kind.Orderable(),
		Upload:     e.Kind.UploadFolder != "",
		Records:    records,
	})
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *Handler) reorder(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if !e.Kind.Orderable() {
		h.writeError(c, &common.ValidationError{Fields: map[string]string{"ids": "collection has no display order"}})
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.Store.Reorder(c.Request.Context(), e.Kind.Name, req.IDs); err != nil {
		h.writeError(c, err)
		return
	}
	for i, id := range req.IDs {
		h.Activity.Record(models.ActionUpdate, e.Kind.Name, id, models.Fields{"display_order": i})
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) remove(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}

	confirmed := c.Query("confirm") == "true"
	err := ed.Remove(c.Request.Context(), c.Param("id"), func(string) bool { return confirmed })
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) editor(c *gin.Context) (*editor.Editor, bool) {
	ed, err := h.Sessions.Editor(staffUser(c), c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return ed, true
}

func (h *Handler) writeSession(c *gin.Context, ed *editor.Editor) {
	s := ed.Session()
	resp := sessionResponse{Session: s}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) session(c *gin.Context) {
	if ed, ok := h.editor(c); ok {
		h.writeSession(c, ed)
	}
}

type createRequest struct {
	Defaults models.Fields `json:"defaults"`
}

func (h *Handler) beginCreate(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := ed.BeginCreate(c.Request.Context(), req.Defaults); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, ed)
}

type editRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) beginEdit(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, found := e.Controller.View().Find(req.ID)
	if !found {
		h.writeError(c, common.ErrorNotFound)
		return
	}
	if err := ed.BeginEdit(c.Request.Context(), item.Record); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, ed)
}

type fieldsRequest struct {
	Fields models.Fields `json:"fields" binding:"required"`
}

func (h *Handler) updateFields(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}

	var req fieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	for name, value := range req.Fields {
		if err := ed.UpdateField(name, value); err != nil {
			h.writeError(c, err)
			return
		}
	}
	h.writeSession(c, ed)
}

func (h *Handler) submit(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}

	id, err := ed.Submit(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) cancel(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	if err := ed.Cancel(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, ed)
}

func (h *Handler) detach(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	if err := ed.Detach(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeSession(c, ed)
}

// upload stores the "file" form field and writes its URL into the draft's
// image field. On failure the draft is untouched and the client may set the
// image field by hand.
func (h *Handler) upload(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if e.Kind.UploadFolder == "" {
		h.writeError(c, &common.ValidationError{Fields: map[string]string{"file": "collection has no media"}})
		return
	}
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	if ed.Session().Mode == editor.ModeNone {
		h.writeError(c, common.ErrNoSession)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.MaxUploadBytes)+1))
	if err != nil {
		badRequest(c, err)
		return
	}

	if ed.Saving() {
		h.writeError(c, common.ErrSaving)
		return
	}
	task, err := h.Uploads.Upload(c.Request.Context(), data, fh.Filename, e.Kind.UploadFolder)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := ed.UpdateField(e.Kind.ImageField, task.URL); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "field": e.Kind.ImageField})
}
