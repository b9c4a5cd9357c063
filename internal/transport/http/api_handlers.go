package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"salachat/internal/core"
)

// APIHandlers serves read-only snapshots of the hub registries. Rooms are
// created over the chat protocol itself, so there are no mutating routes.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates the handler set.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, log: logger}
}

// ListRooms returns every room with its member count, in creation order.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"rooms": h.hub.Rooms()})
}

// ListSessions returns every live session and its current room.
// GET /api/sessions
func (h *APIHandlers) ListSessions(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"sessions": h.hub.Sessions()})
}
