package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"villa-booking-server/domain"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingstatus", validBookingStatus)
	}
}

func validBookingStatus(fl validator.FieldLevel) bool {
	return domain.ValidStatus(domain.BookingStatus(fl.Field().String()))
}
