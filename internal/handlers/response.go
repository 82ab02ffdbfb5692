package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/middleware"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse represents a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, errType, message, code string) {
	c.JSON(status, ErrorResponse{
		Error:   errType,
		Message: message,
		Code:    code,
	})
}

// currentUserID returns the authenticated user's ID as the string stored on records
func currentUserID(c *gin.Context) string {
	return middleware.MustGetUserContext(c).UserID.String()
}
