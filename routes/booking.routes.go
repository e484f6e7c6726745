package routes

import (
	"github.com/gin-gonic/gin"

	"villa-booking-server/handlers"
)

type BookingRouteHandler struct {
	bookingHandler handlers.BookingHandler
	authHandler    handlers.AuthHandler
}

func NewBookingRouteHandler(bookingHandler handlers.BookingHandler, authHandler handlers.AuthHandler) BookingRouteHandler {
	return BookingRouteHandler{bookingHandler, authHandler}
}

// BookingRoute registers the customer-facing booking endpoints.
func (rc *BookingRouteHandler) BookingRoute(rg *gin.RouterGroup) {
	router := rg.Group("/booking")

	router.POST("", rc.bookingHandler.CreateBooking)
	router.GET("/:id", rc.bookingHandler.GetBooking)
	router.PATCH("/:id/customer-info", rc.bookingHandler.UpdateCustomerInfo)
	router.PATCH("/:id/payment", rc.bookingHandler.UpdatePayment)
	router.POST("/:id/upload-slip", rc.bookingHandler.UploadPaymentSlip)
	router.POST("/:id/cancel", rc.bookingHandler.CancelBooking)
}

// AdminBookingRoute registers the booking management endpoints behind the
// admin auth middleware.
func (rc *BookingRouteHandler) AdminBookingRoute(rg *gin.RouterGroup) {
	router := rg.Group("/bookings")
	router.Use(rc.authHandler.AuthMiddleware())

	router.GET("", rc.bookingHandler.GetAllBookings)
	router.GET("/:id", rc.bookingHandler.GetBooking)
	router.GET("/:id/payment-slip", rc.bookingHandler.GetPaymentSlip)
	router.GET("/:id/events", rc.bookingHandler.GetBookingEvents)
	router.PATCH("/:id", rc.bookingHandler.UpdateBooking)
	router.PATCH("/:id/status", rc.bookingHandler.UpdateStatus)
	router.POST("/:id/send-confirmation", rc.bookingHandler.SendConfirmation)
	router.DELETE("/:id", rc.bookingHandler.DeleteBooking)
}
