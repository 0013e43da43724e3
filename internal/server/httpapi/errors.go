package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Fallback string            `json:"fallback,omitempty"`
}

func statusOf(err error) int {
	var (
		verr *common.ValidationError
		rerr *common.RemoteError
		uerr *common.UploadError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, common.ErrInvalidField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrUnknownCollection):
		return http.StatusNotFound
	case errors.Is(err, common.ErrRecordGone),
		errors.Is(err, common.ErrSessionActive),
		errors.Is(err, common.ErrSaving),
		errors.Is(err, common.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &uerr):
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			return http.StatusRequestEntityTooLarge
		case errors.Is(err, upload.ErrEmpty):
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and a JSON body. A declined
// confirmation is not a failure.
func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrConfirmationDeclined) {
		c.JSON(http.StatusOK, gin.H{"declined": true})
		return
	}

	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}

	var verr *common.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	var uerr *common.UploadError
	if errors.As(err, &uerr) {
		resp.Fallback = "manual_url"
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		if status == http.StatusInternalServerError {
			resp.Error = common.ErrorInternal.Error()
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
