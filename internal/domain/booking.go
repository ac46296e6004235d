package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsTerminal reports whether the status can never change again.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusExpired, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking state machine: the only legal moves are
// from PENDING into one of the terminal states.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingStatusPending && next.IsTerminal()
}

// Booking is a hold on seats of a flight instance. While PENDING its seats are
// borrowed from the instance's available pool; a terminal booking either keeps
// them (CONFIRMED) or has returned them (EXPIRED, CANCELLED).
//
// PassengerDetails and ContactInfo are opaque payloads supplied by the caller;
// the core stores and returns them without interpretation.
type Booking struct {
	ID               uuid.UUID
	FlightInstanceID uuid.UUID
	Seats            int
	Status           BookingStatus
	TotalCents       int64
	Currency         string
	ConfirmationRef  string
	PassengerDetails json.RawMessage
	ContactInfo      json.RawMessage
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
