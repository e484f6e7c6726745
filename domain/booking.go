package domain

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusPending        BookingStatus = "pending"
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusInReview       BookingStatus = "in_review"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusExpired        BookingStatus = "expired"
	StatusCheckedIn      BookingStatus = "checked_in"
	StatusCheckedOut     BookingStatus = "checked_out"
)

type PaymentMethod string

const (
	BankTransfer PaymentMethod = "bank_transfer"
	PromptPay    PaymentMethod = "promptpay"
)

type CustomerInfo struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
}

type BookingDetails struct {
	CheckIn    time.Time `bson:"check_in" json:"checkIn"`
	CheckOut   time.Time `bson:"check_out" json:"checkOut"`
	Rooms      int       `bson:"rooms" json:"rooms"`
	TotalPrice float64   `bson:"total_price" json:"totalPrice"`
}

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookingDetails  BookingDetails     `bson:"booking_details" json:"bookingDetails"`
	CustomerInfo    *CustomerInfo      `bson:"customer_info,omitempty" json:"customerInfo,omitempty"`
	PaymentMethod   PaymentMethod      `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	PaymentSlipRef  string             `bson:"payment_slip_ref,omitempty" json:"paymentSlipRef,omitempty"`
	SpecialRequests string             `bson:"special_requests,omitempty" json:"specialRequests,omitempty"`
	Status          BookingStatus      `bson:"status" json:"status"`
	CanExpire       bool               `bson:"can_expire" json:"canExpire"`
	ExpiresAt       *time.Time         `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

type Bookings []*Booking

func (b *Booking) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(b)
}

func (b *Booking) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(b)
}

func (bs Bookings) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(bs)
}

// NewBooking creates a pending booking with a short expiry deadline. The
// caller has already validated the details and recomputed the total price.
func NewBooking(details BookingDetails, method PaymentMethod, specialRequests string, now time.Time, graceWindow time.Duration) *Booking {
	deadline := now.Add(graceWindow)
	return &Booking{
		BookingDetails:  details,
		PaymentMethod:   method,
		SpecialRequests: specialRequests,
		Status:          StatusPending,
		CanExpire:       true,
		ExpiresAt:       &deadline,
		CreatedAt:       now,
	}
}

func ValidStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusPendingPayment, StatusInReview, StatusConfirmed,
		StatusCancelled, StatusExpired, StatusCheckedIn, StatusCheckedOut:
		return true
	}
	return false
}

func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCancelled, StatusExpired, StatusCheckedOut:
		return true
	}
	return false
}

// SelectPaymentMethod moves a pending booking into pending_payment and
// extends the deadline to the payment window. The booking stays expirable
// until a payment slip arrives.
func (b *Booking) SelectPaymentMethod(method PaymentMethod, now time.Time, paymentWindow time.Duration) error {
	if method != BankTransfer && method != PromptPay {
		return NewValidationError("paymentMethod", "invalid payment method")
	}
	if b.Status != StatusPending && b.Status != StatusPendingPayment {
		return NewValidationError("status", "payment method can only be selected while the booking is awaiting payment")
	}
	b.PaymentMethod = method
	if b.PaymentSlipRef == "" {
		deadline := now.Add(paymentWindow)
		b.Status = StatusPendingPayment
		b.CanExpire = true
		b.ExpiresAt = &deadline
	}
	return nil
}

// AttachPaymentSlip records the payment evidence reference. Evidence is only
// accepted while the booking awaits payment, moving it into review, or while
// it is already in review, replacing the reference. A confirmed or later
// booking never moves backwards. Once evidence is attached the booking can
// never become expirable again.
func (b *Booking) AttachPaymentSlip(ref string) error {
	if ref == "" {
		return NewValidationError("paymentSlipRef", "payment slip reference is required")
	}
	switch b.Status {
	case StatusPending, StatusPendingPayment:
		b.Status = StatusInReview
	case StatusInReview:
	default:
		return NewValidationError("status", "cannot attach a payment slip to a "+string(b.Status)+" booking")
	}
	b.PaymentSlipRef = ref
	b.disarmExpiry()
	return nil
}

// SetCustomerInfo attaches the customer details collected after the initial
// booking step.
func (b *Booking) SetCustomerInfo(info CustomerInfo) error {
	if b.IsTerminal() {
		return NewValidationError("status", "cannot update a "+string(b.Status)+" booking")
	}
	b.CustomerInfo = &info
	return nil
}

// Transition applies an admin status override. Only pending and
// pending_payment without a slip are ever expirable, so every other target
// disarms the expiry deadline.
func (b *Booking) Transition(target BookingStatus, now time.Time, paymentWindow time.Duration) error {
	if !ValidStatus(target) {
		return NewValidationError("status", "invalid status value")
	}
	if b.IsTerminal() {
		return NewValidationError("status", "booking is already "+string(b.Status))
	}

	switch target {
	case StatusPending:
		return NewValidationError("status", "cannot move a booking back to pending")
	case StatusPendingPayment:
		if b.Status != StatusPending {
			return NewValidationError("status", "only a pending booking can move to pending_payment")
		}
		if b.PaymentSlipRef == "" {
			deadline := now.Add(paymentWindow)
			b.Status = StatusPendingPayment
			b.CanExpire = true
			b.ExpiresAt = &deadline
			return nil
		}
		return NewValidationError("status", "a booking with payment evidence cannot await payment")
	case StatusExpired:
		return b.Expire(now)
	case StatusCheckedIn:
		if b.Status != StatusConfirmed {
			return NewValidationError("status", "only a confirmed booking can check in")
		}
	case StatusCheckedOut:
		if b.Status != StatusCheckedIn {
			return NewValidationError("status", "only a checked-in booking can check out")
		}
	}

	b.Status = target
	b.disarmExpiry()
	return nil
}

// Expire performs the sweeper transition. It is a no-op error when the
// booking is not eligible, so re-running a sweep is safe.
func (b *Booking) Expire(now time.Time) error {
	if !b.Expirable(now) {
		return NewValidationError("status", "booking is not eligible for expiry")
	}
	b.Status = StatusExpired
	b.disarmExpiry()
	return nil
}

// Expirable reports whether the deadline has passed and nothing blocks
// automatic expiry. A payment slip always blocks it, whatever expires_at says.
func (b *Booking) Expirable(now time.Time) bool {
	if !b.CanExpire || b.PaymentSlipRef != "" {
		return false
	}
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// IsActive is the read-path view filter: a booking counts for display and
// availability when it cannot expire, has not yet hit its deadline, or
// carries payment evidence. Stale pending rows the sweeper has not reaped
// yet therefore never block the calendar.
func (b *Booking) IsActive(now time.Time) bool {
	if !b.CanExpire || b.PaymentSlipRef != "" {
		return true
	}
	return b.ExpiresAt != nil && b.ExpiresAt.After(now)
}

func (b *Booking) disarmExpiry() {
	b.CanExpire = false
	b.ExpiresAt = nil
}
