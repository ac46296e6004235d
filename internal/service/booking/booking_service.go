package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vporoshin/aeroreserve/internal/domain"
	"github.com/vporoshin/aeroreserve/internal/kafka"
	"github.com/vporoshin/aeroreserve/internal/repository"
	"github.com/vporoshin/aeroreserve/internal/service/pricing"
)

type BookingUseCase interface {
	CreateHold(ctx context.Context, input CreateHoldInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	Confirm(ctx context.Context, id uuid.UUID, ref string) (*domain.Booking, error)
	ReleaseHold(ctx context.Context, id uuid.UUID, reason string) (*domain.Booking, error)
	ExpireDueHolds(ctx context.Context) ([]domain.Booking, error)
}

type Quoter interface {
	Quote(priceCents int64, seats int) pricing.Quote
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateHoldInput struct {
	FlightInstanceID uuid.UUID
	Seats            int
	PassengerDetails json.RawMessage
	ContactInfo      json.RawMessage
}

// BookingService drives the hold/confirm/release lifecycle over the seat
// ledger. Confirm and the expiry/cancel paths never race into a double
// transition because both go through conditional status flips; seats are
// released only after a flip is known to have won.
type BookingService struct {
	bookings           repository.BookingRepository
	ledger             repository.LedgerRepository
	quoter             Quoter
	producer           Producer
	eventTopic         string
	notificationsTopic string
	holdWindow         time.Duration
}

type BookingServiceOption func(*BookingService)

func WithEventTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.eventTopic = topic
	}
}

// WithNotificationsTopic mirrors every lifecycle event onto the topic the
// notification consumer reads.
func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	ledger repository.LedgerRepository,
	quoter Quoter,
	producer Producer,
	holdWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:   bookings,
		ledger:     ledger,
		quoter:     quoter,
		producer:   producer,
		holdWindow: holdWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHold reserves seats and persists a pending booking.
//
// The lock -> validate -> conditional decrement sequence runs in one
// transaction so the precise rejection reason is read under the row lock,
// while the decrement itself stays a conditional UPDATE. If persisting the
// booking fails after the decrement committed, the seats are released before
// the error is surfaced.
func (s *BookingService) CreateHold(ctx context.Context, input CreateHoldInput) (*domain.Booking, error) {
	if input.Seats <= 0 {
		return nil, errors.New("seat count must be positive")
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "begin hold transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	instance, err := s.ledger.LockForUpdate(ctx, tx, input.FlightInstanceID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, err
		}
		return nil, &domain.StoreError{Op: "lock flight instance", Err: err}
	}
	if !instance.Status.Bookable() {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrInstanceNotAvailable, instance.Status)
	}
	if instance.AvailableSeats < input.Seats {
		return nil, fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientSeats, input.Seats, instance.AvailableSeats)
	}

	reserved, err := s.ledger.ReserveTx(ctx, tx, input.FlightInstanceID, input.Seats)
	if err != nil {
		return nil, &domain.StoreError{Op: "reserve seats", Err: err}
	}
	if !reserved {
		return nil, domain.ErrReservationConflict
	}
	if err := tx.Commit(ctx); err != nil {
		// The decrement never became visible, nothing to compensate.
		return nil, &domain.StoreError{Op: "commit seat reservation", Err: err}
	}

	quote := s.quoter.Quote(instance.PriceCents, input.Seats)
	booking := &domain.Booking{
		ID:               uuid.New(),
		FlightInstanceID: input.FlightInstanceID,
		Seats:            input.Seats,
		TotalCents:       quote.TotalCents,
		Currency:         instance.Currency,
		PassengerDetails: input.PassengerDetails,
		ContactInfo:      input.ContactInfo,
		ExpiresAt:        time.Now().Add(s.holdWindow),
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		// Seats are already decremented; give them back before failing.
		if relErr := s.ledger.Release(ctx, input.FlightInstanceID, input.Seats); relErr != nil {
			log.Printf("compensating release failed for instance %s: %v", input.FlightInstanceID, relErr)
		}
		return nil, &domain.StoreError{Op: "persist booking", Err: err}
	}

	s.publish(ctx, "booking_created", booking, "")
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// Confirm flips a pending booking to CONFIRMED in a single conditional update.
// Losing the race against expiry or cancellation yields ErrAlreadyFinalized
// with the current booking state; seats stay consumed only on a win.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID, ref string) (*domain.Booking, error) {
	confirmed, err := s.bookings.ConfirmPending(ctx, id, ref)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		existing, getErr := s.bookings.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return existing, domain.ErrAlreadyFinalized
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "confirm booking", Err: err}
	}

	s.publish(ctx, "booking_confirmed", confirmed, "")
	return confirmed, nil
}

// ReleaseHold cancels a pending booking and returns its seats. The status is
// flipped before the seats are released so a concurrent confirmation can never
// be combined with a release.
func (s *BookingService) ReleaseHold(ctx context.Context, id uuid.UUID, reason string) (*domain.Booking, error) {
	cancelled, err := s.bookings.FinalizePending(ctx, id, domain.BookingStatusCancelled)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		existing, getErr := s.bookings.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return existing, domain.ErrAlreadyFinalized
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "cancel booking", Err: err}
	}

	if err := s.ledger.Release(ctx, cancelled.FlightInstanceID, cancelled.Seats); err != nil {
		log.Printf("release seats for cancelled booking %s: %v", cancelled.ID, err)
	}

	s.publish(ctx, "booking_cancelled", cancelled, reason)
	return cancelled, nil
}

// ExpireDueHolds runs one reaper sweep over holds past their deadline. Each
// booking is flipped to EXPIRED first and its seats released only if the flip
// won; a booking confirmed between the scan and the flip is skipped. Failures
// on one booking never abort the sweep.
func (s *BookingService) ExpireDueHolds(ctx context.Context) ([]domain.Booking, error) {
	due, err := s.bookings.ListDuePending(ctx, time.Now())
	if err != nil {
		return nil, &domain.StoreError{Op: "scan due holds", Err: err}
	}

	var expired []domain.Booking
	for _, b := range due {
		flipped, err := s.bookings.FinalizePending(ctx, b.ID, domain.BookingStatusExpired)
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			// Confirmed or cancelled since the scan; its seats are not ours to touch.
			continue
		}
		if err != nil {
			log.Printf("expire booking %s: %v", b.ID, err)
			continue
		}

		if err := s.ledger.Release(ctx, flipped.FlightInstanceID, flipped.Seats); err != nil {
			log.Printf("release seats for expired booking %s: %v", flipped.ID, err)
		}

		s.publish(ctx, "booking_expired", flipped, "hold window elapsed")
		expired = append(expired, *flipped)
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking, reason string) {
	if s.producer == nil {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID.String(),
		FlightInstanceID: b.FlightInstanceID.String(),
		Seats:            b.Seats,
		Status:           string(b.Status),
		Reason:           reason,
		TotalCents:       b.TotalCents,
		Currency:         b.Currency,
		ConfirmationRef:  b.ConfirmationRef,
		Contact:          b.ContactInfo,
		ExpiresAt:        b.ExpiresAt,
	}
	for _, topic := range []string{s.eventTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.BookingID, event); err != nil {
			log.Printf("publish %s event to %s for booking %s: %v", eventType, topic, b.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
