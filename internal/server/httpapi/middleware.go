package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophsite/internal/common"
)

const staffKey = "staff"

func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow(c.ClientIP()) {
			h.Logger.Warn(c.Request.Context(), "login rate limited", "client", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"})
			return
		}
		c.Next()
	}
}

func (h *Handler) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			h.writeError(c, common.ErrorUnauthorized)
			return
		}

		user, err := h.Auth.Authenticate(token)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Set(staffKey, user)
		c.Next()
	}
}

func staffUser(c *gin.Context) string {
	return c.GetString(staffKey)
}
