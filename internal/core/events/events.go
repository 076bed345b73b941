// Package events defines the domain events written to the transactional outbox.
package events

import (
	"context"

	"venuedesk/internal/core/id"
)

// Aggregate types.
const (
	AggregateBooking       = "booking"
	AggregateBookingDetail = "booking_detail"
	AggregateInvoice       = "invoice"
	AggregateRoomCharge    = "room_charge"
)

// Event types.
const (
	BookingCreated             = "booking.created"
	BookingUpdated             = "booking.updated"
	BookingDetailCanceled      = "booking_detail.canceled"
	BookingDetailStatusChanged = "booking_detail.status_changed"
	InvoiceCreated             = "invoice.created"
	InvoiceRevised             = "invoice.revised"
	InvoiceDeleted             = "invoice.deleted"
	LobbyInvoiceCreated        = "lobby_invoice.created"
	RoomChargeCreated          = "room_charge.created"
)

// Event is a state change recorded in the same transaction as the change.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher stores events for asynchronous delivery.
// Publish must be called inside a transaction.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder is an in-memory Publisher for tests.
type Recorder struct {
	Events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType
	}
	return out
}
