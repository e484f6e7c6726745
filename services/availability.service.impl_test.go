package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

var (
	availNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	jun1 = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	jun3 = time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)
	jun2 = time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC)
	jun4 = time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func fixedNow() time.Time {
	return availNow
}

func confirmedBooking(checkIn, checkOut time.Time, rooms int) *domain.Booking {
	booking := domain.NewBooking(domain.BookingDetails{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Rooms:    rooms,
	}, domain.BankTransfer, "", availNow, time.Hour)
	booking.Status = domain.StatusConfirmed
	booking.CanExpire = false
	booking.ExpiresAt = nil
	return booking
}

func TestIsAvailableRejectsOverCapacityDay(t *testing.T) {
	bookings := newMockBookingStore()
	bookings.add(confirmedBooking(jun1, jun3, 2))
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	// June 11 would hold 2 + 2 rooms against 3 bedrooms.
	available, err := svc.IsAvailable(context.Background(), jun2, jun4, 2)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailableAllowsFullHouse(t *testing.T) {
	bookings := newMockBookingStore()
	bookings.add(confirmedBooking(jun1, jun3, 2))
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	// 2 booked + 1 candidate fills exactly 3 bedrooms.
	available, err := svc.IsAvailable(context.Background(), jun2, jun4, 1)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableAllowsAdjacentRanges(t *testing.T) {
	bookings := newMockBookingStore()
	bookings.add(confirmedBooking(jun1, jun2, 3))
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	// Checkout day equals check-in day: no shared night.
	available, err := svc.IsAvailable(context.Background(), jun2, jun4, 3)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableIgnoresStalePendingBookings(t *testing.T) {
	bookings := newMockBookingStore()
	stale := domain.NewBooking(domain.BookingDetails{
		CheckIn:  jun1,
		CheckOut: jun4,
		Rooms:    3,
	}, domain.BankTransfer, "", availNow.Add(-2*time.Hour), time.Hour)
	bookings.add(stale)
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	// The deadline passed an hour ago, so the hold no longer blocks.
	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 3)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableIgnoresCancelledBookings(t *testing.T) {
	bookings := newMockBookingStore()
	cancelled := confirmedBooking(jun1, jun3, 3)
	cancelled.Status = domain.StatusCancelled
	bookings.add(cancelled)
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 3)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableFailsClosedOnStoreError(t *testing.T) {
	bookings := newMockBookingStore()
	storeErr := errors.New("connection reset")
	bookings.FindOverlappingFunc = func(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error) {
		return nil, storeErr
	}
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 1)
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, available)
}

func TestIsAvailableFallsBackToSingleRoomWithoutVilla(t *testing.T) {
	bookings := newMockBookingStore()
	bookings.add(confirmedBooking(jun1, jun3, 1))
	villas := &mockVillaStore{}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 1)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsAvailablePassesInjectedClockToStore(t *testing.T) {
	bookings := newMockBookingStore()
	var seen time.Time
	bookings.FindOverlappingFunc = func(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error) {
		seen = now
		return nil, nil
	}
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	_, err := svc.IsAvailable(context.Background(), jun1, jun3, 1)
	require.NoError(t, err)
	assert.Equal(t, availNow, seen)
}

func TestIsAvailableExcludingIgnoresOwnBooking(t *testing.T) {
	bookings := newMockBookingStore()
	own := bookings.add(confirmedBooking(jun1, jun3, domain.DefaultVilla().Bedrooms))
	villas := &mockVillaStore{villa: domain.DefaultVilla()}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 1)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.IsAvailableExcluding(context.Background(), jun1, jun3, 1, own.ID.Hex())
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableFailsClosedOnVillaStoreError(t *testing.T) {
	bookings := newMockBookingStore()
	villas := &mockVillaStore{err: errors.New("primary unreachable")}

	svc := NewAvailabilityServiceImpl(bookings, villas, testTracer(), fixedNow)

	available, err := svc.IsAvailable(context.Background(), jun1, jun3, 1)
	assert.Error(t, err)
	assert.False(t, available)
}
