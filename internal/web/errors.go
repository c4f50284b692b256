package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkdesk/internal/auth"
	"linkdesk/internal/domain"
	"linkdesk/internal/scraper"
)

// writeError maps service errors onto HTTP responses.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		verr     *domain.ValidationError
		dup      *domain.DuplicateError
		storeErr *domain.StoreError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": dup.Error(), "field": dup.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, scraper.ErrInvalidHost):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": storeErr.Message()})
	default:
		h.log.WithError(err).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
