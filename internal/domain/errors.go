package domain

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the reservation core. Callers branch on these with
// errors.Is; only ErrReservationConflict is worth retrying as-is.
var (
	ErrInstanceNotFound     = errors.New("flight instance not found")
	ErrInstanceNotAvailable = errors.New("flight instance is not open for booking")
	ErrInsufficientSeats    = errors.New("not enough seats available")
	ErrReservationConflict  = errors.New("seats were taken by a concurrent booking")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyFinalized     = errors.New("booking is already finalized")
)

// StoreError marks a storage failure. When it comes out of hold creation the
// reserved seats have already been released back to the ledger.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
