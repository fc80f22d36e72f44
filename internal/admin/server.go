package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat-server/internal/core"
	"github.com/vovakirdan/pollchat-server/internal/dispatch"
)

// StatsResponse reports gauges for the registry and dispatcher.
type StatsResponse struct {
	Rooms         int `json:"rooms"`
	QueueDepth    int `json:"queue_depth"`
	QueueCapacity int `json:"queue_capacity"`
	Workers       int `json:"workers"`
}

// NewServer builds the ops HTTP server with health and stats routes.
func NewServer(addr string, registry *core.Registry, dispatcher *dispatch.Dispatcher, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(loggerMiddleware(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatsResponse{
			Rooms:         registry.Rooms(),
			QueueDepth:    dispatcher.QueueDepth(),
			QueueCapacity: dispatcher.QueueCapacity(),
			Workers:       dispatcher.Workers(),
		})
	})

	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}

// loggerMiddleware logs every admin request after it completes.
func loggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("admin request")
	}
}
