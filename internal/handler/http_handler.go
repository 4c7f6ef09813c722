package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
	"github.com/AnychainX/Live-Commerce-Chat/internal/response"
	"github.com/AnychainX/Live-Commerce-Chat/internal/room"
)

// HTTPHandler exposes the read-only REST surface: room discovery for
// storefront pages that have not opened a websocket yet.
type HTTPHandler struct {
	registry *room.Registry
}

func NewHTTPHandler(registry *room.Registry) *HTTPHandler {
	return &HTTPHandler{registry: registry}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", h.ListRooms)
			rooms.GET("/:id", h.GetRoom)
		}
	}
}

// ListRooms lists every live room's public metadata.
func (h *HTTPHandler) ListRooms(c *gin.Context) {
	response.Success(c, gin.H{"rooms": h.registry.List()})
}

// GetRoom returns one room's metadata plus its currently pinned
// announcements.
func (h *HTTPHandler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := logging.Ctx(ctx)

	roomID := c.Param("id")

	st, err := h.registry.Get(roomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Str(logging.FieldRoomID, roomID).Msg("failed to get room")
		response.InternalError(c, "failed to get room")
		return
	}

	response.Success(c, gin.H{
		"room":   st.Snapshot(),
		"pinned": st.Pinned(),
	})
}
