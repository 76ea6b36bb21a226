package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics on the ops server and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Recover wraps an update-handler goroutine so a panic in one message
// never takes down the polling loop. onPanic is called with the
// recovered value, if any.
func Recover(onPanic func(v any)) {
	if v := recover(); v != nil {
		GetLogger().Error("Unhandled panic in update handler", zap.Any("error", v))
		if onPanic != nil {
			onPanic(v)
		}
	}
}
