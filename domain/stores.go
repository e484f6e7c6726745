package domain

import (
	"context"
	"time"
)

// BookingStore is the persistence boundary for bookings. Read-modify-write
// on a single booking id is last-write-wins; MarkExpired is the one
// conditional update, so an evidence attach that lands first voids the
// sweeper's expiry.
type BookingStore interface {
	Insert(ctx context.Context, booking *Booking) (*Booking, error)
	FindByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
	FindAll(ctx context.Context) (Bookings, error)
	FindOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []BookingStatus, now time.Time) (Bookings, error)
	FindExpirable(ctx context.Context, now time.Time) (Bookings, error)
	MarkExpired(ctx context.Context, id string, now time.Time) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}

// VillaStore provides the villa inventory document consumed by availability
// and pricing.
type VillaStore interface {
	GetActiveVilla(ctx context.Context) (*Villa, error)
	UpdateVilla(ctx context.Context, villa *Villa) (*Villa, error)
	EnsureDefaultVilla(ctx context.Context) error
}

// EventStore is the append-only audit trail of booking lifecycle events.
type EventStore interface {
	InsertEvent(ctx context.Context, event *BookingEvent) error
}
