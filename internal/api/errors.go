package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// respondError writes the HTTP form of a service error
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, verr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": service.ErrForbidden.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{validation.NonFieldKey: []string{"Unable to log in with provided credentials."}})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"errors": err.Error()})
	case errors.Is(err, service.ErrNotInRelation), errors.Is(err, service.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		logging.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}

// bindJSON decodes and validates the body into dst. On failure it writes a
// 400 with the field errors and returns false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fields, ok := validation.Translate(err)
		if !ok {
			fields = validation.FieldErrors{validation.NonFieldKey: {err.Error()}}
		}
		c.JSON(http.StatusBadRequest, fields)
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Unknown ids answer 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return uint(id), true
}
