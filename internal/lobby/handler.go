package lobby

import (
	"github.com/gin-gonic/gin"

	"github.com/iamezell/arcbeta/pkg/response"
)

// Handler exposes the read-model HTTP surface. It only reads the stores;
// the coordinator is the sole mutator.
type Handler struct {
	participants ParticipantStore
	rooms        RoomStore
	roomID       string
}

// NewHandler creates a lobby read-model handler.
func NewHandler(participants ParticipantStore, rooms RoomStore, roomID string) *Handler {
	if roomID == "" {
		roomID = DefaultRoomID
	}
	return &Handler{participants: participants, rooms: rooms, roomID: roomID}
}

// Status handles GET /lobby/status.
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	members, err := h.participants.ListByRoom(ctx, h.roomID)
	if err != nil {
		response.Internal(c, "failed to fetch lobby status")
		return
	}
	room, err := h.rooms.GetStatus(ctx, h.roomID)
	if err != nil {
		response.Internal(c, "failed to fetch lobby status")
		return
	}

	users := make([]UserInfo, 0, len(members))
	for _, m := range members {
		users = append(users, userInfo(m))
	}
	response.OK(c, gin.H{
		"users":     users,
		"isActive":  room.IsActive,
		"userCount": len(users),
	})
}

// GetUser handles GET /lobby/user/:id.
func (h *Handler) GetUser(c *gin.Context) {
	p, err := h.participants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Internal(c, "failed to fetch user")
		return
	}
	if p == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, userInfo(*p))
}
