package handlers

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/metrics"
	"friendship-service/internal/services"
	"friendship-service/internal/telemetry"
)

type FriendHandler struct {
	friends *services.FriendService
	audit   *telemetry.AuditEmitter
}

func NewFriendHandler(friends *services.FriendService, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, audit: audit}
}

type sendRequestBody struct {
	ReceiverID int64 `json:"receiver_id" binding:"required"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	requestID := requestIDFromContext(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(ctx, "ERROR", "invalid request payload", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if userID == nil {
		h.emitAudit(ctx, "ERROR", "missing caller identity", requestID, nil)
		metrics.IncFriendRequest(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, err := h.friends.SendRequest(ctx, *userID, body.ReceiverID)
	if err != nil {
		_, msg := errorStatus(err)
		h.emitAudit(ctx, "ERROR", msg, requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		writeError(c, err)
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request sent to '"+strconv.FormatInt(body.ReceiverID, 10)+"'", requestID, userID)
	metrics.IncFriendRequest(metrics.StatusSuccess)
	c.JSON(nethttp.StatusCreated, req)
}

func (h *FriendHandler) ListReceived(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requests, err := h.friends.ListReceived(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, requests)
}

func (h *FriendHandler) CountReceived(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.friends.CountReceived(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"count": count})
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.AcceptRequest, "accepted", metrics.IncFriendAccept)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.RejectRequest, "rejected", metrics.IncFriendReject)
}

func (h *FriendHandler) handleDecision(c *gin.Context, action func(ctx context.Context, requestID, actorID int64) error, status string, inc func(string)) {
	reqID, ok := parseIDParam(c, "id")
	if !ok {
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	requestID := requestIDFromContext(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()
	if userID == nil {
		h.emitAudit(ctx, "ERROR", "missing caller identity", requestID, nil)
		inc(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := action(ctx, reqID, *userID); err != nil {
		_, msg := errorStatus(err)
		h.emitAudit(ctx, "ERROR", msg, requestID, userID)
		inc(metrics.StatusFailed)
		writeError(c, err)
		return
	}

	h.emitAudit(ctx, "INFO", "Friend request "+status, requestID, userID)
	inc(metrics.StatusSuccess)
	c.JSON(nethttp.StatusOK, gin.H{"status": status})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friends, err := h.friends.ListFriends(c.Request.Context(), *userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, friends)
}

func (h *FriendHandler) DeleteFriend(c *gin.Context) {
	friendID, ok := parseIDParam(c, "friend_id")
	if !ok {
		metrics.IncUnfriend(metrics.StatusFailed)
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	requestID := requestIDFromContext(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()
	if userID == nil {
		metrics.IncUnfriend(metrics.StatusFailed)
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.friends.Unfriend(ctx, *userID, friendID); err != nil {
		_, msg := errorStatus(err)
		h.emitAudit(ctx, "ERROR", msg, requestID, userID)
		metrics.IncUnfriend(metrics.StatusFailed)
		writeError(c, err)
		return
	}

	h.emitAudit(ctx, "INFO", "Friendship with '"+strconv.FormatInt(friendID, 10)+"' removed", requestID, userID)
	metrics.IncUnfriend(metrics.StatusSuccess)
	c.Status(nethttp.StatusNoContent)
}

func (h *FriendHandler) emitAudit(ctx context.Context, level, text, requestID string, userID *int64) {
	if h.audit == nil {
		return
	}
	h.audit.EmitAudit(ctx, level, text, requestID, userID)
}
