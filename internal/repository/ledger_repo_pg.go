package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vporoshin/aeroreserve/internal/domain"
)

// Tx is the subset of pgx.Tx the ledger hands out for lock-scoped work.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LedgerRepository owns the authoritative seat counters. Every mutation is a
// single conditional UPDATE so concurrent callers can never both act on the
// same observed seat count.
type LedgerRepository interface {
	List(ctx context.Context) ([]domain.FlightInstance, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FlightInstance, error)
	Begin(ctx context.Context) (Tx, error)
	LockForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*domain.FlightInstance, error)
	ReserveTx(ctx context.Context, tx Tx, id uuid.UUID, seats int) (bool, error)
	Reserve(ctx context.Context, id uuid.UUID, seats int) (bool, error)
	Release(ctx context.Context, id uuid.UUID, seats int) error
}

type PGLedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) LedgerRepository {
	return &PGLedgerRepository{db: db}
}

const instanceColumns = `id, flight_number, origin, destination, departure_time, arrival_time, total_seats, available_seats, price_cents, currency, status, created_at, updated_at`

func scanInstance(row pgx.Row) (*domain.FlightInstance, error) {
	var f domain.FlightInstance
	err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.Currency, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGLedgerRepository) List(ctx context.Context) ([]domain.FlightInstance, error) {
	rows, err := r.db.Query(ctx, `SELECT `+instanceColumns+` FROM flight_instances ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]domain.FlightInstance, 0)
	for rows.Next() {
		f, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *f)
	}
	return instances, rows.Err()
}

func (r *PGLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlightInstance, error) {
	f, err := scanInstance(r.db.QueryRow(ctx, `SELECT `+instanceColumns+` FROM flight_instances WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstanceNotFound
	}
	return f, err
}

func (r *PGLedgerRepository) Begin(ctx context.Context) (Tx, error) {
	return r.db.Begin(ctx)
}

// LockForUpdate takes the exclusive row lock for the duration of tx, so the
// caller can validate status and seat count before the conditional decrement.
func (r *PGLedgerRepository) LockForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*domain.FlightInstance, error) {
	f, err := scanInstance(tx.QueryRow(ctx, `SELECT `+instanceColumns+` FROM flight_instances WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstanceNotFound
	}
	return f, err
}

const reserveSQL = `UPDATE flight_instances
	SET available_seats = available_seats - $2, updated_at = now()
	WHERE id=$1 AND available_seats >= $2 AND status='SCHEDULED'`

func (r *PGLedgerRepository) ReserveTx(ctx context.Context, tx Tx, id uuid.UUID, seats int) (bool, error) {
	res, err := tx.Exec(ctx, reserveSQL, id, seats)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGLedgerRepository) Reserve(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	res, err := r.db.Exec(ctx, reserveSQL, id, seats)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// Release returns seats to the pool, clamped so the counter never exceeds
// total_seats. At-most-once semantics are the caller's responsibility.
func (r *PGLedgerRepository) Release(ctx context.Context, id uuid.UUID, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flight_instances
		SET available_seats = LEAST(available_seats + $2, total_seats), updated_at = now()
		WHERE id=$1`, id, seats)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

var _ LedgerRepository = (*PGLedgerRepository)(nil)
