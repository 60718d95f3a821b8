package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse is the body of unexpected server errors
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Recovery turns a panic in a handler into a logged 500 JSON response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.Error().
					Interface("panic", err).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error."})
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes in the API's JSON shape
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Detail: "Not found."})
	}
}
