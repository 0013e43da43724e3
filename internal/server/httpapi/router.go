// Package httpapi exposes the live collections, the contact form and the
// staff editing workflow over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/gophsite/internal/activity"
	"github.com/dmitrijs2005/gophsite/internal/content"
	"github.com/dmitrijs2005/gophsite/internal/logging"
	"github.com/dmitrijs2005/gophsite/internal/models"
	"github.com/dmitrijs2005/gophsite/internal/remote"
	"github.com/dmitrijs2005/gophsite/internal/server/auth"
	"github.com/dmitrijs2005/gophsite/internal/server/sessions"
	"github.com/dmitrijs2005/gophsite/internal/upload"
)

// ActivityFeed records and lists audit entries.
type ActivityFeed interface {
	activity.Recorder
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

// FeedStatus reports the change feed connection.
type FeedStatus interface {
	Connected() bool
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Registry           *content.Registry
	Store              remote.Store
	Activity           ActivityFeed
	Sessions           *sessions.Manager
	Auth               *auth.Service
	Uploads            *upload.Runner
	Feed               FeedStatus
	Logger             logging.Logger
	LoginRatePerMinute int
	MaxUploadBytes     int
}

// Handler serves the API.
type Handler struct {
	Deps
	limiter *auth.LoginLimiter
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = upload.DefaultMaxSize
	}
	h := &Handler{
		Deps:    d,
		limiter: auth.NewLoginLimiter(d.LoginRatePerMinute),
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())
	r.MaxMultipartMemory = int64(d.MaxUploadBytes)

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/collections/:name", h.listPublic)
	api.GET("/collections/:name/carousel", h.carousel)
	api.POST("/collections/:name/carousel/:action", h.navigateCarousel)
	api.POST("/contact", h.contact)

	admin := api.Group("/admin")
	admin.POST("/login", h.rateLimit(), h.login)

	staff := admin.Group("", h.requireStaff())
	staff.POST("/logout", h.logout)
	staff.GET("/activity", h.listActivity)
	staff.GET("/collections/:name", h.listAdmin)
	staff.PUT("/collections/:name/order", h.reorder)
	staff.DELETE("/collections/:name/records/:id", h.remove)

	sess := staff.Group("/collections/:name/session")
	sess.GET("", h.session)
	sess.POST("/create", h.beginCreate)
	sess.POST("/edit", h.beginEdit)
	sess.PATCH("/fields", h.updateFields)
	sess.POST("/submit", h.submit)
	sess.POST("/cancel", h.cancel)
	sess.POST("/detach", h.detach)
	sess.POST("/upload", h.upload)

	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.Logger.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (h *Handler) health(c *gin.Context) {
	connected := h.Feed == nil || h.Feed.Connected()
	status := "ok"
	if !connected {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "feed_connected": connected})
}
