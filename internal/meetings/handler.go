package meetings

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aura-translate/backend/pkg/response"
)

// CreateRequest is the body for POST /api/meetings.
type CreateRequest struct {
	AttendeeName string `json:"attendeeName" binding:"required"`
}

// AddAttendeeRequest is the body for POST /api/meetings/:id/attendees.
type AddAttendeeRequest struct {
	AttendeeName string `json:"attendeeName" binding:"required"`
}

// Handler serves the meeting/attendee REST surface.
type Handler struct {
	store Store
}

// NewHandler creates a meetings Handler over store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Create handles POST /api/meetings.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "attendeeName is required")
		return
	}

	meeting, attendee, err := h.store.CreateMeeting(c.Request.Context(), req.AttendeeName)
	if err != nil {
		response.Internal(c, "failed to create meeting")
		return
	}
	response.Created(c, gin.H{"meeting": meeting, "attendee": attendee})
}

// AddAttendee handles POST /api/meetings/:id/attendees.
func (h *Handler) AddAttendee(c *gin.Context) {
	var req AddAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "attendeeName is required")
		return
	}

	meetingID := c.Param("id")
	meeting, attendee, err := h.store.AddAttendee(c.Request.Context(), meetingID, req.AttendeeName)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "meeting not found")
		case errors.Is(err, ErrMeetingFull):
			response.Conflict(c, "meeting already has two attendees")
		default:
			response.Internal(c, "failed to add attendee")
		}
		return
	}
	response.Created(c, gin.H{"meeting": meeting, "attendee": attendee})
}

// Health handles GET /api/health.
func Health(c *gin.Context) {
	response.OK(c, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}
