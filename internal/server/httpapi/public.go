package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophsite/internal/carousel"
	"github.com/dmitrijs2005/gophsite/internal/collection"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

type collectionResponse struct {
	Collection string            `json:"collection"`
	Status     collection.Status `json:"status"`
	Error      string            `json:"error,omitempty"`
	Records    []any             `json:"records"`
}

type carouselResponse struct {
	Cursor carousel.State `json:"cursor"`
	Record any            `json:"record"`
}

// publicEntry resolves a collection that is shown on the public site.
func (h *Handler) publicEntry(c *gin.Context) (*content.Entry, bool) {
	e, err := h.Registry.Get(c.Param("name"))
	if err == nil && !e.Kind.Public {
		err = common.ErrUnknownCollection
	}
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return e, true
}

func viewError(v collection.View[any]) string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

func (h *Handler) listPublic(c *gin.Context) {
	e, ok := h.publicEntry(c)
	if !ok {
		return
	}

	v := e.Controller.View()
	records := make([]any, len(v.Records))
	for i, it := range v.Records {
		records[i] = it.Value
	}
	c.JSON(http.StatusOK, collectionResponse{
		Collection: v.Collection,
		Status:     v.Status,
		Error:      viewError(v),
		Records:    records,
	})
}

func (h *Handler) carousel(c *gin.Context) {
	e, ok := h.publicEntry(c)
	if !ok {
		return
	}

	st, item, found := e.Rotator.Current()
	resp := carouselResponse{Cursor: st}
	if found {
		resp.Record = item.Value
	}
	c.JSON(http.StatusOK, resp)
}

var carouselMoves = map[string]func(*carousel.Cursor){
	"next":  func(c *carousel.Cursor) { c.Next() },
	"prev":  func(c *carousel.Cursor) { c.Prev() },
	"play":  func(c *carousel.Cursor) { c.SetAuto(true) },
	"pause": func(c *carousel.Cursor) { c.SetAuto(false) },
}

// viewerState reads the caller's own cursor from ?index=&auto=&dir=. Without
// an index the caller starts from the shared rotation.
func viewerState(c *gin.Context, shared carousel.State) (carousel.State, error) {
	st := shared
	if s := c.Query("index"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return st, fmt.Errorf("index: %w", err)
		}
		st.Index = n
	}
	if s := c.Query("auto"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return st, fmt.Errorf("auto: %w", err)
		}
		st.Auto = b
	}
	if s := c.Query("dir"); s != "" {
		st.Direction = carousel.Direction(s)
	}
	return st, nil
}

// navigateCarousel moves a viewer's cursor. The state lives with the viewer;
// the shared rotation is not changed.
func (h *Handler) navigateCarousel(c *gin.Context) {
	e, ok := h.publicEntry(c)
	if !ok {
		return
	}
	move, ok := carouselMoves[c.Param("action")]
	if !ok {
		h.writeError(c, common.ErrorNotFound)
		return
	}

	shared, _, _ := e.Rotator.Current()
	st, err := viewerState(c, shared)
	if err != nil {
		badRequest(c, err)
		return
	}

	st, item, found := e.Rotator.Resolve(st, move)
	resp := carouselResponse{Cursor: st}
	if found {
		resp.Record = item.Value
	}
	c.JSON(http.StatusOK, resp)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *Handler) contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	kind, err := content.Lookup(content.ContactMessages)
	if err != nil {
		h.writeError(c, err)
		return
	}

	fields := models.Fields{
		"name":    req.Name,
		"email":   req.Email,
		"message": req.Message,
		"handled": false,
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if err := kind.Schema.Validate(fields); err != nil {
		h.writeError(c, err)
		return
	}

	rec, err := h.Store.Insert(c.Request.Context(), content.ContactMessages, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.Activity.Record(models.ActionCreate, content.ContactMessages, rec.ID, fields)
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID})
}
