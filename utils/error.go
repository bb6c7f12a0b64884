package utils

import (
	"net/http"

	"feetracker-go/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is a middleware to catch panics and return the API's error envelope
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zap.L().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, models.Result{
					Success: false,
					Error:   "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a failed result envelope and logs it
func JSONError(c *gin.Context, status int, message string, err error) {
	fields := []zap.Field{zap.Int("status", status), zap.String("path", c.Request.URL.Path)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error(message, fields...)
	} else {
		zap.L().Debug(message, fields...)
	}
	c.JSON(status, models.Result{Success: false, Error: message})
}
