package middleware

import (
	appErrors "MyFinance/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextRequestID = "request_id"
)

func abortWithError(c *gin.Context, err *appErrors.AppError) {
	payload := gin.H{
		"error":   err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		payload["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.StatusCode, payload)
}
