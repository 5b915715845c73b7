package handlers

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/metrics"
	"friendship-service/internal/services"
)

type PresenceHandler struct {
	presence *services.PresenceService
}

func NewPresenceHandler(presence *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type presenceBody struct {
	IsCoworking *bool `json:"is_coworking" binding:"required"`
}

// UpdatePresence sets the caller's own coworking flag.
func (h *PresenceHandler) UpdatePresence(c *gin.Context) {
	var body presenceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.IncPresenceUpdate(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncPresenceUpdate(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.presence.SetPresence(c.Request.Context(), *userID, *body.IsCoworking); err != nil {
		metrics.IncPresenceUpdate(metrics.StatusFailed)
		writeError(c, err)
		return
	}

	metrics.IncPresenceUpdate(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"user_id": *userID, "is_coworking": *body.IsCoworking})
}

func (h *PresenceHandler) FriendsPresence(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	present, err := h.presence.FriendsCurrentlyPresent(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, present)
}
