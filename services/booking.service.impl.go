package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

// priceTolerance absorbs float rounding between the client's total and the
// server's recomputation.
const priceTolerance = 0.01

type BookingServiceImpl struct {
	bookings     domain.BookingStore
	villas       domain.VillaStore
	events       domain.EventStore
	availability AvailabilityService
	logger       *logrus.Logger
	Tracer       trace.Tracer

	now           func() time.Time
	graceWindow   time.Duration
	paymentWindow time.Duration
}

func NewBookingServiceImpl(bookings domain.BookingStore, villas domain.VillaStore, events domain.EventStore,
	availability AvailabilityService, logger *logrus.Logger, tracer trace.Tracer,
	now func() time.Time, graceWindow, paymentWindow time.Duration) BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingServiceImpl{
		bookings:      bookings,
		villas:        villas,
		events:        events,
		availability:  availability,
		logger:        logger,
		Tracer:        tracer,
		now:           now,
		graceWindow:   graceWindow,
		paymentWindow: paymentWindow,
	}
}

func (s *BookingServiceImpl) CreateBooking(ctx context.Context, details domain.BookingDetails, method domain.PaymentMethod, specialRequests string) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	if details.CheckIn.IsZero() {
		return nil, domain.NewValidationError("bookingDetails.checkIn", "check-in date is required")
	}
	if details.CheckOut.IsZero() {
		return nil, domain.NewValidationError("bookingDetails.checkOut", "check-out date is required")
	}
	if !details.CheckOut.After(details.CheckIn) {
		return nil, domain.NewValidationError("bookingDetails.checkOut", "check-out date must be after check-in date")
	}
	if details.Rooms < 1 {
		return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms must be at least 1")
	}
	if details.TotalPrice < 0 {
		return nil, domain.NewValidationError("bookingDetails.totalPrice", "total price cannot be negative")
	}
	if method != "" && method != domain.BankTransfer && method != domain.PromptPay {
		return nil, domain.NewValidationError("paymentMethod", "invalid payment method")
	}

	villa, err := s.villas.GetActiveVilla(ctx)
	switch {
	case err == nil:
		if details.Rooms > villa.Bedrooms {
			return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms cannot exceed villa capacity")
		}
		if details.Rooms < villa.MinRooms {
			return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms is below the villa minimum")
		}
		expected := villa.TotalPrice(details.CheckIn, details.CheckOut, details.Rooms)
		if math.Abs(expected-details.TotalPrice) > priceTolerance {
			return nil, domain.NewValidationError("bookingDetails.totalPrice", "total price does not match the villa rate card")
		}
	case errors.Is(err, domain.ErrVillaNotFound()):
		// Defensive default when no villa document exists yet.
		if details.Rooms != 1 {
			return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms cannot exceed villa capacity")
		}
	default:
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, details.CheckIn, details.CheckOut, details.Rooms)
	if err != nil {
		// Fail closed: an unreachable store rejects the booking attempt.
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !available {
		return nil, &domain.AvailabilityConflictError{Message: "Selected dates are not available"}
	}

	booking := domain.NewBooking(details, method, specialRequests, s.now(), s.graceWindow)
	booking, err = s.bookings.Insert(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"booking_id": booking.ID.Hex()}).Info("New booking created")
	s.appendEvent(ctx, domain.EventBookingCreated, booking.ID.Hex(), string(booking.Status))
	return booking, nil
}

func (s *BookingServiceImpl) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.GetBooking")
	defer span.End()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Stale unpaid bookings past deadline read as gone even before the
	// sweeper has reaped them.
	if !booking.IsActive(s.now()) {
		return nil, domain.ErrBookingNotFound()
	}
	return booking, nil
}

func (s *BookingServiceImpl) GetAllBookings(ctx context.Context) (domain.Bookings, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.GetAllBookings")
	defer span.End()

	all, err := s.bookings.FindAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := s.now()
	bookings := make(domain.Bookings, 0, len(all))
	for _, booking := range all {
		if booking.IsActive(now) {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (s *BookingServiceImpl) SetCustomerInfo(ctx context.Context, id string, info domain.CustomerInfo) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.SetCustomerInfo")
	defer span.End()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.SetCustomerInfo(info); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.appendEvent(ctx, domain.EventCustomerInfoSet, id, info.Email)
	return booking, nil
}

// UpdatePayment handles the two customer payment steps: selecting a payment
// method extends the deadline to the payment window, attaching a slip
// reference moves the booking into review and permanently disarms expiry.
func (s *BookingServiceImpl) UpdatePayment(ctx context.Context, id string, method domain.PaymentMethod, slipRef string) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.UpdatePayment")
	defer span.End()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if method != "" {
		if err := booking.SelectPaymentMethod(method, s.now(), s.paymentWindow); err != nil {
			return nil, err
		}
	}
	if slipRef != "" {
		if err := booking.AttachPaymentSlip(slipRef); err != nil {
			return nil, err
		}
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if slipRef != "" {
		s.appendEvent(ctx, domain.EventPaymentSlipUploaded, id, slipRef)
	} else if method != "" {
		s.appendEvent(ctx, domain.EventPaymentMethodSelected, id, string(method))
	}
	return booking, nil
}

// UpdateBooking applies an admin edit to the stay details and customer info.
// The edited booking's own calendar entry does not count against itself in
// the availability re-check.
func (s *BookingServiceImpl) UpdateBooking(ctx context.Context, id string, details *domain.BookingDetails, info *domain.CustomerInfo) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.UpdateBooking")
	defer span.End()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, domain.NewValidationError("status", "cannot edit a "+string(booking.Status)+" booking")
	}

	if details != nil {
		if details.CheckIn.IsZero() {
			return nil, domain.NewValidationError("bookingDetails.checkIn", "check-in date is required")
		}
		if details.CheckOut.IsZero() {
			return nil, domain.NewValidationError("bookingDetails.checkOut", "check-out date is required")
		}
		if !details.CheckOut.After(details.CheckIn) {
			return nil, domain.NewValidationError("bookingDetails.checkOut", "check-out date must be after check-in date")
		}
		if details.Rooms < 1 {
			return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms must be at least 1")
		}
		if details.TotalPrice < 0 {
			return nil, domain.NewValidationError("bookingDetails.totalPrice", "total price cannot be negative")
		}

		villa, err := s.villas.GetActiveVilla(ctx)
		switch {
		case err == nil:
			if details.Rooms > villa.Bedrooms {
				return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms cannot exceed villa capacity")
			}
			if details.Rooms < villa.MinRooms {
				return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms is below the villa minimum")
			}
		case errors.Is(err, domain.ErrVillaNotFound()):
			if details.Rooms != 1 {
				return nil, domain.NewValidationError("bookingDetails.rooms", "number of rooms cannot exceed villa capacity")
			}
		default:
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		available, err := s.availability.IsAvailableExcluding(ctx, details.CheckIn, details.CheckOut, details.Rooms, id)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !available {
			return nil, &domain.AvailabilityConflictError{Message: "Selected dates are not available"}
		}
		booking.BookingDetails = *details
	}

	if info != nil {
		if err := booking.SetCustomerInfo(*info); err != nil {
			return nil, err
		}
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.appendEvent(ctx, domain.EventBookingUpdated, id, "")
	return booking, nil
}

func (s *BookingServiceImpl) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.UpdateStatus")
	defer span.End()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Transition(status, s.now(), s.paymentWindow); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.appendEvent(ctx, domain.EventStatusChanged, id, string(status))
	return booking, nil
}

func (s *BookingServiceImpl) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (s *BookingServiceImpl) DeleteBooking(ctx context.Context, id string) error {
	ctx, span := s.Tracer.Start(ctx, "BookingService.DeleteBooking")
	defer span.End()

	if err := s.bookings.DeleteByID(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.appendEvent(ctx, domain.EventBookingDeleted, id, "")
	return nil
}

// appendEvent writes to the audit trail best-effort; a failed append never
// fails the booking operation.
func (s *BookingServiceImpl) appendEvent(ctx context.Context, event, bookingID, detail string) {
	if s.events == nil {
		return
	}
	err := s.events.InsertEvent(ctx, &domain.BookingEvent{
		Event:     event,
		BookingID: bookingID,
		Detail:    detail,
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{"booking_id": bookingID, "event": event}).Error("Could not append booking event: ", err)
	}
}
