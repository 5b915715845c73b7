package handlers

import (
	"errors"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"friendship-service/internal/middleware"
	"friendship-service/internal/models"
)

func requestIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextRequestID); ok {
		if requestID, ok := v.(string); ok && requestID != "" {
			return requestID
		}
	}
	requestID := c.GetHeader(middleware.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID
}

// userIDFromContext returns the caller set by the auth middleware, or nil.
func userIDFromContext(c *gin.Context) *int64 {
	if userIDVal, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := userIDVal.(int64); ok {
			return &userID
		}
	}
	return nil
}

// errorStatus maps domain errors to an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrSelfRequest):
		return nethttp.StatusBadRequest, models.ErrSelfRequest.Error()
	case errors.Is(err, models.ErrNotFound):
		return nethttp.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrAlreadyFriends):
		return nethttp.StatusConflict, models.ErrAlreadyFriends.Error()
	case errors.Is(err, models.ErrRequestAlreadyPending):
		return nethttp.StatusConflict, models.ErrRequestAlreadyPending.Error()
	case errors.Is(err, models.ErrAlreadyResolved):
		return nethttp.StatusConflict, models.ErrAlreadyResolved.Error()
	case errors.Is(err, models.ErrUnauthorized):
		return nethttp.StatusForbidden, models.ErrUnauthorized.Error()
	case errors.Is(err, models.ErrTransient):
		return nethttp.StatusServiceUnavailable, "temporarily unavailable, please retry"
	default:
		return nethttp.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) int {
	status, msg := errorStatus(err)
	if status >= nethttp.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
	return status
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
