// Package sweeper owns the periodic expiry scan: bookings whose deadline
// passed without payment evidence are transitioned to expired. The sweeper
// is started and stopped by the process entry point and takes an injectable
// clock so tests can drive it directly.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type Sweeper struct {
	bookings domain.BookingStore
	events   domain.EventStore
	logger   *logrus.Logger
	Tracer   trace.Tracer

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func New(bookings domain.BookingStore, events domain.EventStore, logger *logrus.Logger, tracer trace.Tracer, interval time.Duration, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		bookings: bookings,
		events:   events,
		logger:   logger,
		Tracer:   tracer,
		interval: interval,
		now:      now,
	}
}

// Start launches the periodic sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(ctx)
	s.logger.Infof("Expiry sweeper started, interval %s", s.interval)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("Expiry sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Single-flight guard: a tick that fires while the previous sweep is
	// still running is skipped instead of piling up.
	sweeping := make(chan struct{}, 1)

	// Taking the slot back on exit waits out an in-flight sweep, so Stop
	// never returns with a sweep still running.
	defer func() { sweeping <- struct{}{} }()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case sweeping <- struct{}{}:
				go func() {
					defer func() { <-sweeping }()
					if _, err := s.Sweep(ctx); err != nil {
						s.logger.Error("Expiry sweep failed: ", err)
					}
				}()
			default:
				s.logger.Warn("Previous expiry sweep still in flight, skipping tick")
			}
		}
	}
}

// Sweep runs one expiry pass and returns how many bookings were expired.
// Eligibility is re-checked at commit time by the store, so a payment slip
// attached mid-sweep keeps its booking alive, and a second pass over already
// expired bookings transitions nothing.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ctx, span := s.Tracer.Start(ctx, "Sweeper.Sweep")
	defer span.End()

	now := s.now()
	candidates, err := s.bookings.FindExpirable(ctx, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	expired := 0
	for _, booking := range candidates {
		id := booking.ID.Hex()
		ok, err := s.bookings.MarkExpired(ctx, id, now)
		if err != nil {
			// One bad record must not halt the pass.
			s.logger.WithFields(logrus.Fields{"booking_id": id}).Error("Could not expire booking: ", err)
			continue
		}
		if !ok {
			continue
		}
		expired++
		s.logger.WithFields(logrus.Fields{"booking_id": id}).Info("Booking expired")
		s.appendEvent(ctx, id)
	}
	return expired, nil
}

func (s *Sweeper) appendEvent(ctx context.Context, bookingID string) {
	if s.events == nil {
		return
	}
	err := s.events.InsertEvent(ctx, &domain.BookingEvent{
		Event:     domain.EventBookingExpired,
		BookingID: bookingID,
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{"booking_id": bookingID}).Error("Could not append expiry event: ", err)
	}
}
