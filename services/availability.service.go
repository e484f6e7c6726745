package services

import (
	"context"
	"time"
)

type AvailabilityService interface {
	// IsAvailable reports whether a booking of rooms over [checkIn, checkOut)
	// fits the villa capacity given the existing active bookings. A store
	// failure is returned as an error and the caller must treat the range as
	// unavailable.
	IsAvailable(ctx context.Context, checkIn, checkOut time.Time, rooms int) (bool, error)

	// IsAvailableExcluding is IsAvailable minus one booking id, so an edit of
	// an existing booking is not blocked by its own calendar entry.
	IsAvailableExcluding(ctx context.Context, checkIn, checkOut time.Time, rooms int, excludeBookingID string) (bool, error)
}
