package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"villa-booking-server/domain"
)

// mockBookingStore is an in-memory BookingStore for service tests.
type mockBookingStore struct {
	bookings map[string]*domain.Booking

	FindOverlappingFunc func(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error)
	InsertFunc          func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

func newMockBookingStore() *mockBookingStore {
	return &mockBookingStore{bookings: make(map[string]*domain.Booking)}
}

func (m *mockBookingStore) add(booking *domain.Booking) *domain.Booking {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	m.bookings[booking.ID.Hex()] = booking
	return booking
}

func (m *mockBookingStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, booking)
	}
	return m.add(booking), nil
}

func (m *mockBookingStore) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound()
	}
	return booking, nil
}

func (m *mockBookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := m.bookings[booking.ID.Hex()]; !ok {
		return domain.ErrBookingNotFound()
	}
	m.bookings[booking.ID.Hex()] = booking
	return nil
}

func (m *mockBookingStore) FindAll(ctx context.Context) (domain.Bookings, error) {
	all := make(domain.Bookings, 0, len(m.bookings))
	for _, booking := range m.bookings {
		all = append(all, booking)
	}
	return all, nil
}

func (m *mockBookingStore) FindOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error) {
	if m.FindOverlappingFunc != nil {
		return m.FindOverlappingFunc(ctx, checkIn, checkOut, excludeStatuses, now)
	}
	var overlapping domain.Bookings
	for _, booking := range m.bookings {
		excluded := false
		for _, status := range excludeStatuses {
			if booking.Status == status {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if booking.BookingDetails.CheckIn.Before(checkOut) && booking.BookingDetails.CheckOut.After(checkIn) {
			overlapping = append(overlapping, booking)
		}
	}
	return overlapping, nil
}

func (m *mockBookingStore) FindExpirable(ctx context.Context, now time.Time) (domain.Bookings, error) {
	var expirable domain.Bookings
	for _, booking := range m.bookings {
		if booking.Expirable(now) {
			expirable = append(expirable, booking)
		}
	}
	return expirable, nil
}

func (m *mockBookingStore) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	if err := booking.Expire(now); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *mockBookingStore) DeleteByID(ctx context.Context, id string) error {
	if _, ok := m.bookings[id]; !ok {
		return domain.ErrBookingNotFound()
	}
	delete(m.bookings, id)
	return nil
}

// mockVillaStore serves a single villa document.
type mockVillaStore struct {
	villa *domain.Villa
	err   error
}

func (m *mockVillaStore) GetActiveVilla(ctx context.Context) (*domain.Villa, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.villa == nil {
		return nil, domain.ErrVillaNotFound()
	}
	return m.villa, nil
}

func (m *mockVillaStore) UpdateVilla(ctx context.Context, villa *domain.Villa) (*domain.Villa, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.villa = villa
	return villa, nil
}

func (m *mockVillaStore) EnsureDefaultVilla(ctx context.Context) error {
	if m.villa == nil {
		m.villa = domain.DefaultVilla()
	}
	return nil
}

// mockEventStore records appended events.
type mockEventStore struct {
	events []*domain.BookingEvent
	err    error
}

func (m *mockEventStore) InsertEvent(ctx context.Context, event *domain.BookingEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
