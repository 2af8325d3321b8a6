// Package respond writes the JSON envelopes shared by every HTTP handler.
package respond

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// OK writes body with "success": true added.
func OK(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// List writes a collection with its length.
func List(c *gin.Context, data any, count int) {
	OK(c, gin.H{"count": count, "data": data})
}

// Error records err on the context and writes the failure envelope with the
// status Status derives from it.
func Error(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(Status(err), gin.H{
		"success": false,
		"error":   message,
		"message": err.Error(),
	})
}

// BadRequest writes a 400 failure envelope.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// Status maps domain errors to HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, plm.ErrStyleNotFound):
		return http.StatusNotFound
	case errors.Is(err, plm.ErrFetchFailed), errors.Is(err, plm.ErrTokenUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
