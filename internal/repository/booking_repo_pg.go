package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vporoshin/aeroreserve/internal/domain"
)

// BookingRepository persists holds. Terminal transitions go through the
// conditional ConfirmPending/FinalizePending updates, which only take effect
// while the row is still PENDING; whichever writer gets there first wins and
// the loser sees ErrAlreadyFinalized.
type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ConfirmPending(ctx context.Context, id uuid.UUID, ref string) (*domain.Booking, error)
	FinalizePending(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListDuePending(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_instance_id, seats, status, total_cents, currency, confirmation_ref, passenger_details, contact_info, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.FlightInstanceID, &b.Seats, &b.Status, &b.TotalCents, &b.Currency,
		&b.ConfirmationRef, &b.PassengerDetails, &b.ContactInfo, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, flight_instance_id, seats, status, total_cents, currency, passenger_details, contact_info, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.FlightInstanceID, booking.Seats, booking.Status, booking.TotalCents,
		booking.Currency, booking.PassengerDetails, booking.ContactInfo, booking.ExpiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) ConfirmPending(ctx context.Context, id uuid.UUID, ref string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, confirmation_ref=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, ref, id, domain.BookingStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyFinalized
	}
	return b, err
}

func (r *PGBookingRepository) FinalizePending(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if !domain.BookingStatusPending.CanTransitionTo(status) {
		return nil, fmt.Errorf("cannot finalize booking into %s", status)
	}
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
		RETURNING `+bookingColumns,
		status, id, domain.BookingStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyFinalized
	}
	return b, err
}

func (r *PGBookingRepository) ListDuePending(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 AND expires_at <= $2`,
		domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *b)
	}
	return due, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
