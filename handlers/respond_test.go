package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"villa-booking-server/domain"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bookingNotFound", domain.ErrBookingNotFound(), http.StatusNotFound},
		{"villaNotFound", domain.ErrVillaNotFound(), http.StatusNotFound},
		{"adminNotFound", domain.ErrAdminNotFound(), http.StatusNotFound},
		{"validation", domain.NewValidationError("rooms", "too many rooms"), http.StatusBadRequest},
		{"availabilityConflict", &domain.AvailabilityConflictError{Message: "dates taken"}, http.StatusConflict},
		{"storeUnavailable", &domain.StoreUnavailableError{Inner: errors.New("down")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(recorder)

			respondError(ctx, tt.err)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}
