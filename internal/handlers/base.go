package handlers

import (
	"errors"
	"net/http"

	"contentdesk/internal/middleware"
	"contentdesk/internal/services"
	"contentdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RenderError writes a JSON error body.
func RenderError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RenderFailure maps a service error to its status code: validation errors
// are 400, unknown posts 404 and everything else 500.
func RenderFailure(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		RenderError(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)).Msg("request failed")
		RenderError(c, http.StatusInternalServerError, "internal server error")
	}
}

// paramID reads the :id path parameter and answers 400 itself when it is not
// a valid post id.
func paramID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusBadRequest, "invalid post id")
	}
	return id, ok
}
