package services

import (
	"context"

	"villa-booking-server/domain"
)

type NotificationService interface {
	// SendBookingConfirmation emails the customer their confirmation. A
	// failure here is non-fatal to the booking flow: callers log it and move
	// on.
	SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error
}
