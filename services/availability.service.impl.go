package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type AvailabilityServiceImpl struct {
	bookings domain.BookingStore
	villas   domain.VillaStore
	Tracer   trace.Tracer
	now      func() time.Time
}

func NewAvailabilityServiceImpl(bookings domain.BookingStore, villas domain.VillaStore, tracer trace.Tracer, now func() time.Time) AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityServiceImpl{
		bookings: bookings,
		villas:   villas,
		Tracer:   tracer,
		now:      now,
	}
}

// IsAvailable sums the rooms of every overlapping active booking for each
// calendar day of the candidate range. The candidate is rejected as soon as
// its own rooms plus the booked rooms would exceed the villa capacity on any
// single day. Cancelled and expired bookings never block the calendar.
func (s *AvailabilityServiceImpl) IsAvailable(ctx context.Context, checkIn, checkOut time.Time, rooms int) (bool, error) {
	return s.IsAvailableExcluding(ctx, checkIn, checkOut, rooms, "")
}

func (s *AvailabilityServiceImpl) IsAvailableExcluding(ctx context.Context, checkIn, checkOut time.Time, rooms int, excludeBookingID string) (bool, error) {
	ctx, span := s.Tracer.Start(ctx, "AvailabilityService.IsAvailable")
	defer span.End()

	maxRooms := 1
	villa, err := s.villas.GetActiveVilla(ctx)
	if err == nil {
		maxRooms = villa.Bedrooms
	} else if !errors.Is(err, domain.ErrVillaNotFound()) {
		// Store failure: fail closed rather than risk overbooking.
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	now := s.now()
	overlapping, err := s.bookings.FindOverlapping(ctx, checkIn, checkOut,
		[]domain.BookingStatus{domain.StatusCancelled, domain.StatusExpired}, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	bookedRoomsByDay := make(map[string]int)
	for _, booking := range overlapping {
		if excludeBookingID != "" && booking.ID.Hex() == excludeBookingID {
			continue
		}
		if !booking.IsActive(now) {
			continue
		}
		start := booking.BookingDetails.CheckIn
		if checkIn.After(start) {
			start = checkIn
		}
		end := booking.BookingDetails.CheckOut
		if checkOut.Before(end) {
			end = checkOut
		}
		for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
			key := day.Format("2006-01-02")
			bookedRoomsByDay[key] += booking.BookingDetails.Rooms
		}
	}

	for _, booked := range bookedRoomsByDay {
		if booked+rooms > maxRooms {
			return false, nil
		}
	}

	return true, nil
}
