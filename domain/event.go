package domain

import (
	"encoding/json"
	"io"
)

// Booking lifecycle events appended to the event store.
const (
	EventBookingCreated        = "booking_created"
	EventCustomerInfoSet       = "customer_info_set"
	EventPaymentMethodSelected = "payment_method_selected"
	EventPaymentSlipUploaded   = "payment_slip_uploaded"
	EventStatusChanged         = "status_changed"
	EventBookingUpdated        = "booking_updated"
	EventBookingExpired        = "booking_expired"
	EventBookingDeleted        = "booking_deleted"
)

type BookingEvent struct {
	Event     string `json:"event"`
	BookingID string `json:"booking_id"`
	Detail    string `json:"detail,omitempty"`
}

func (e *BookingEvent) ToJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(e)
}

func (e *BookingEvent) FromJSON(r io.Reader) error {
	dec := json.NewDecoder(r)
	return dec.Decode(e)
}
