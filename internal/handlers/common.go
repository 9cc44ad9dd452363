package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/middleware"
	"github.com/sgazz/SuperMoment/internal/models"
)

// respondError maps service errors onto HTTP status codes. Anything that is
// not a known domain error is attached to the context for ErrorHandler.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
	}
}

func callerIdentity(c *gin.Context) (string, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return "", false
	}
	return claims.Identity(), true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := helpers.StringTrim(c.Param(name))
	if raw == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(name+" is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}
