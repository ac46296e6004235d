package payment

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vporoshin/aeroreserve/internal/domain"
	bookingsvc "github.com/vporoshin/aeroreserve/internal/service/booking"
)

// Gateway simulates a payment provider. On an approved charge it confirms the
// booking with a generated reference; on a declined charge it does nothing and
// the hold runs to expiry. It never touches the seat ledger itself.
type Gateway struct {
	bookings     bookingsvc.BookingUseCase
	approvalRate float64
	delay        time.Duration
}

type Result struct {
	PaymentID       uuid.UUID
	Status          string
	ConfirmationRef string
	Booking         *domain.Booking
}

const (
	StatusSucceeded = "succeeded"
	StatusDeclined  = "declined"
)

var ErrPaymentDeclined = errors.New("payment declined")

func NewGateway(bookings bookingsvc.BookingUseCase, approvalRate float64, delay time.Duration) *Gateway {
	return &Gateway{
		bookings:     bookings,
		approvalRate: approvalRate,
		delay:        delay,
	}
}

func (g *Gateway) Process(ctx context.Context, bookingID uuid.UUID) (*Result, error) {
	b, err := g.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrAlreadyFinalized
	}

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if rand.Float64() >= g.approvalRate {
		return &Result{PaymentID: uuid.New(), Status: StatusDeclined}, ErrPaymentDeclined
	}

	ref := newReference()
	confirmed, err := g.bookings.Confirm(ctx, bookingID, ref)
	if err != nil {
		// Expiry may have won between the status check and the flip.
		return nil, err
	}

	return &Result{
		PaymentID:       uuid.New(),
		Status:          StatusSucceeded,
		ConfirmationRef: ref,
		Booking:         confirmed,
	}, nil
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newReference() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(referenceAlphabet[rand.Intn(len(referenceAlphabet))])
	}
	return sb.String()
}
