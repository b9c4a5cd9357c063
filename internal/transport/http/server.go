package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"salachat/internal/config"
	"salachat/internal/core"
)

// NewServer builds the HTTP server: health check, the chat WebSocket
// endpoint, and read-only observability endpoints.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	api := NewAPIHandlers(hub, logger)
	router.GET("/api/rooms", api.ListRooms)
	router.GET("/api/sessions", api.ListSessions)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
