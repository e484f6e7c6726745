package services

import (
	"context"

	"villa-booking-server/domain"
)

type BookingService interface {
	CreateBooking(ctx context.Context, details domain.BookingDetails, method domain.PaymentMethod, specialRequests string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	GetAllBookings(ctx context.Context) (domain.Bookings, error)
	SetCustomerInfo(ctx context.Context, id string, info domain.CustomerInfo) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, slipRef string) (*domain.Booking, error)
	// UpdateBooking is the admin edit: nil fields are left untouched, changed
	// dates and rooms are re-validated against capacity and the calendar.
	UpdateBooking(ctx context.Context, id string, details *domain.BookingDetails, info *domain.CustomerInfo) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}
