package domain

import (
	"time"

	"github.com/google/uuid"
)

type InstanceStatus string

const (
	InstanceStatusScheduled InstanceStatus = "SCHEDULED"
	InstanceStatusClosed    InstanceStatus = "CLOSED"
	InstanceStatusCancelled InstanceStatus = "CANCELLED"
)

// Bookable reports whether new holds may be placed against the instance.
func (s InstanceStatus) Bookable() bool {
	return s == InstanceStatusScheduled
}

// FlightInstance is the authoritative seat ledger row for one scheduled flight.
// AvailableSeats is only ever mutated through the ledger repository's
// conditional updates; it stays within [0, TotalSeats].
type FlightInstance struct {
	ID             uuid.UUID
	FlightNumber   string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	TotalSeats     int
	AvailableSeats int
	PriceCents     int64
	Currency       string
	Status         InstanceStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
