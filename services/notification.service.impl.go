package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"villa-booking-server/config"
	"villa-booking-server/domain"
)

type NotificationServiceImpl struct {
	config         *config.Config
	logger         *logrus.Logger
	Tracer         trace.Tracer
	CircuitBreaker *gobreaker.CircuitBreaker
}

func NewNotificationServiceImpl(cfg *config.Config, logger *logrus.Logger, tracer trace.Tracer) NotificationService {
	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "SMTPSend",
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Infof("Circuit Breaker %s state changed from %s to %s", name, from, to)
		},
	})

	return &NotificationServiceImpl{
		config:         cfg,
		logger:         logger,
		Tracer:         tracer,
		CircuitBreaker: circuitBreaker,
	}
}

func (s *NotificationServiceImpl) SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error {
	_, span := s.Tracer.Start(ctx, "NotificationService.SendBookingConfirmation")
	defer span.End()

	if booking.CustomerInfo == nil || booking.CustomerInfo.Email == "" {
		return domain.NewValidationError("customerInfo.email", "booking has no customer email")
	}

	var body bytes.Buffer
	body.WriteString(fmt.Sprintf("Dear %s %s,\n\n", booking.CustomerInfo.FirstName, booking.CustomerInfo.LastName))
	body.WriteString("Your villa booking is confirmed.\n\n")
	body.WriteString(fmt.Sprintf("Booking reference: %s\n", booking.ID.Hex()))
	body.WriteString(fmt.Sprintf("Check-in: %s\n", booking.BookingDetails.CheckIn.Format("2 January 2006")))
	body.WriteString(fmt.Sprintf("Check-out: %s\n", booking.BookingDetails.CheckOut.Format("2 January 2006")))
	body.WriteString(fmt.Sprintf("Rooms: %d\n", booking.BookingDetails.Rooms))
	body.WriteString(fmt.Sprintf("Total: %.2f THB\n\n", booking.BookingDetails.TotalPrice))
	body.WriteString("We look forward to welcoming you.\n")

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.EmailFrom)
	m.SetHeader("To", booking.CustomerInfo.Email)
	m.SetHeader("Subject", "Your villa booking confirmation")
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUser, s.config.SMTPPass)

	_, err := s.CircuitBreaker.Execute(func() (interface{}, error) {
		return nil, d.DialAndSend(m)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			s.logger.Error("SMTP circuit breaker is open, skipping confirmation email")
		} else {
			s.logger.Error("Could not send confirmation email: ", err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
