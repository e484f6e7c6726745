package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"villa-booking-server/domain"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(ctx *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.AvailabilityConflictError
	var storeErr *domain.StoreUnavailableError

	switch {
	case errors.Is(err, domain.ErrBookingNotFound()),
		errors.Is(err, domain.ErrVillaNotFound()),
		errors.Is(err, domain.ErrAdminNotFound()):
		ctx.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": validationErr.Message,
			"errors":  []gin.H{{"msg": validationErr.Message, "path": validationErr.Field}},
		})
	case errors.As(err, &conflictErr):
		ctx.JSON(http.StatusConflict, gin.H{"status": "error", "message": conflictErr.Message})
	case errors.As(err, &storeErr):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Service temporarily unavailable"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "An unexpected error occurred"})
	}
}
