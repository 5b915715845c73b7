package handlers

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/services"
)

type UserHandler struct {
	users   *services.UserService
	friends *services.FriendService
}

func NewUserHandler(users *services.UserService, friends *services.FriendService) *UserHandler {
	return &UserHandler{users: users, friends: friends}
}

// GetMe returns the caller with their friends and pending received requests.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.GetUserByID(ctx, *userID, *userID)
	if err != nil {
		writeError(c, err)
		return
	}

	friends, err := h.friends.ListFriends(ctx, *userID)
	if err != nil {
		writeError(c, err)
		return
	}

	incoming, err := h.friends.ListReceived(ctx, *userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"id":                user.ID,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"email":             user.Email,
		"pronouns":          user.Pronouns,
		"is_coworking":      user.IsCoworking,
		"friends":           friends,
		"incoming_requests": incoming,
	})
}

// GetUserByID shows presence only when the user is the caller or a friend.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), *userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, users)
}

// ListEligible returns the users the caller could send a request to.
func (h *UserHandler) ListEligible(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	users, err := h.users.ListEligibleUsers(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, users)
}
