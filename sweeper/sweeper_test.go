package sweeper

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

var sweepNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking

	findExpirableErr  error
	findExpirableFunc func(ctx context.Context, now time.Time) (domain.Bookings, error)
	markExpiredErr    map[string]error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		bookings:       make(map[string]*domain.Booking),
		markExpiredErr: make(map[string]error),
	}
}

func (f *fakeBookingStore) add(booking *domain.Booking) *domain.Booking {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	f.bookings[booking.ID.Hex()] = booking
	return booking
}

func (f *fakeBookingStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(booking), nil
}

func (f *fakeBookingStore) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound()
	}
	return booking, nil
}

func (f *fakeBookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[booking.ID.Hex()] = booking
	return nil
}

func (f *fakeBookingStore) FindAll(ctx context.Context) (domain.Bookings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make(domain.Bookings, 0, len(f.bookings))
	for _, booking := range f.bookings {
		all = append(all, booking)
	}
	return all, nil
}

func (f *fakeBookingStore) FindOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error) {
	return nil, nil
}

func (f *fakeBookingStore) FindExpirable(ctx context.Context, now time.Time) (domain.Bookings, error) {
	if f.findExpirableFunc != nil {
		return f.findExpirableFunc(ctx, now)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findExpirableErr != nil {
		return nil, f.findExpirableErr
	}
	var expirable domain.Bookings
	for _, booking := range f.bookings {
		if booking.Expirable(now) {
			expirable = append(expirable, booking)
		}
	}
	return expirable, nil
}

// MarkExpired mirrors the store's conditional update: eligibility is
// re-checked under the lock before the transition commits.
func (f *fakeBookingStore) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.markExpiredErr[id]; err != nil {
		return false, err
	}
	booking, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	if err := booking.Expire(now); err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeBookingStore) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

type fakeEventStore struct {
	mu     sync.Mutex
	events []*domain.BookingEvent
}

func (f *fakeEventStore) InsertEvent(ctx context.Context, event *domain.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func staleBooking(createdAt time.Time) *domain.Booking {
	return domain.NewBooking(domain.BookingDetails{
		CheckIn:  sweepNow.AddDate(0, 0, 7),
		CheckOut: sweepNow.AddDate(0, 0, 9),
		Rooms:    1,
	}, domain.BankTransfer, "", createdAt, time.Hour)
}

func newTestSweeper(store *fakeBookingStore, events *fakeEventStore) *Sweeper {
	return New(store, events, quietLogger(), testTracer(), time.Minute, func() time.Time { return sweepNow })
}

func TestSweepExpiresStaleBookings(t *testing.T) {
	store := newFakeBookingStore()
	stale := store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	fresh := store.add(staleBooking(sweepNow.Add(-30 * time.Minute)))
	events := &fakeEventStore{}

	expired, err := newTestSweeper(store, events).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, domain.StatusExpired, stale.Status)
	assert.Equal(t, domain.StatusPending, fresh.Status)

	require.Len(t, events.events, 1)
	assert.Equal(t, domain.EventBookingExpired, events.events[0].Event)
	assert.Equal(t, stale.ID.Hex(), events.events[0].BookingID)
}

func TestSweepSparesBookingsWithPaymentEvidence(t *testing.T) {
	store := newFakeBookingStore()
	booking := store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	require.NoError(t, booking.AttachPaymentSlip("/villa/payment-slips/abc.jpg"))
	events := &fakeEventStore{}

	expired, err := newTestSweeper(store, events).Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, domain.StatusInReview, booking.Status)
	assert.Empty(t, events.events)
}

func TestSweepSkipsSlipAttachedBetweenScanAndCommit(t *testing.T) {
	store := newFakeBookingStore()
	booking := store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	events := &fakeEventStore{}
	sweeper := newTestSweeper(store, events)

	candidates, err := store.FindExpirable(context.Background(), sweepNow)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	// Evidence lands after the scan but before the commit.
	require.NoError(t, booking.AttachPaymentSlip("/villa/payment-slips/late.jpg"))

	ok, err := store.MarkExpired(context.Background(), booking.ID.Hex(), sweepNow)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.StatusInReview, booking.Status)

	expired, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestSweepIsIdempotent(t *testing.T) {
	store := newFakeBookingStore()
	store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	events := &fakeEventStore{}
	sweeper := newTestSweeper(store, events)

	expired, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	expired, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Len(t, events.events, 1)
}

func TestSweepContinuesPastFailingRecord(t *testing.T) {
	store := newFakeBookingStore()
	broken := store.add(staleBooking(sweepNow.Add(-3 * time.Hour)))
	store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	store.markExpiredErr[broken.ID.Hex()] = errors.New("write conflict")
	events := &fakeEventStore{}

	expired, err := newTestSweeper(store, events).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestSweepPropagatesScanError(t *testing.T) {
	store := newFakeBookingStore()
	store.findExpirableErr = errors.New("primary unreachable")

	_, err := newTestSweeper(store, &fakeEventStore{}).Sweep(context.Background())
	assert.Error(t, err)
}

func TestTicksSkippedWhileSweepInFlight(t *testing.T) {
	store := newFakeBookingStore()
	started := make(chan struct{})
	release := make(chan struct{})
	var scans int32
	store.findExpirableFunc = func(ctx context.Context, now time.Time) (domain.Bookings, error) {
		if atomic.AddInt32(&scans, 1) == 1 {
			close(started)
			<-release
		}
		return nil, nil
	}
	sweeper := New(store, &fakeEventStore{}, quietLogger(), testTracer(), 2*time.Millisecond, func() time.Time { return sweepNow })

	sweeper.Start(context.Background())
	<-started

	// Several ticks fire while the first sweep is blocked; none may start
	// a second scan.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&scans))

	close(release)
	sweeper.Stop()
}

func TestStopWaitsForInFlightSweep(t *testing.T) {
	store := newFakeBookingStore()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var finished int32
	store.findExpirableFunc = func(ctx context.Context, now time.Time) (domain.Bookings, error) {
		once.Do(func() {
			close(started)
			<-release
			atomic.StoreInt32(&finished, 1)
		})
		return nil, nil
	}
	sweeper := New(store, &fakeEventStore{}, quietLogger(), testTracer(), 2*time.Millisecond, func() time.Time { return sweepNow })

	sweeper.Start(context.Background())
	<-started

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	sweeper.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}

func TestStartAndStop(t *testing.T) {
	store := newFakeBookingStore()
	store.add(staleBooking(sweepNow.Add(-2 * time.Hour)))
	events := &fakeEventStore{}
	sweeper := New(store, events, quietLogger(), testTracer(), 5*time.Millisecond, func() time.Time { return sweepNow })

	sweeper.Start(context.Background())
	sweeper.Start(context.Background()) // second Start is a no-op

	assert.Eventually(t, func() bool {
		events.mu.Lock()
		defer events.mu.Unlock()
		return len(events.events) == 1
	}, time.Second, 5*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop() // second Stop is a no-op
}
