package apperr

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request-id middleware stores the id on the
// gin context.
const RequestIDKey = "request_id"

// Write translates any error into the canonical error body and aborts
// the request. Errors that are not *Error become internal_server_error.
func Write(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal()
	}
	var requestID *string
	if id := c.GetString(RequestIDKey); id != "" {
		requestID = &id
	}
	c.AbortWithStatusJSON(appErr.Status, Body{
		RequestID: requestID,
		Error:     appErr.Code,
		Message:   appErr.Message,
	})
}
