package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vporoshin/aeroreserve/internal/domain"
	"github.com/vporoshin/aeroreserve/internal/repository"
)

// In-memory ledger and booking store mirroring the Postgres repositories'
// contracts: Begin takes the ledger lock the way a row lock would, and the
// conditional flips report ErrAlreadyFinalized on zero matches.

type memLedger struct {
	mu        sync.Mutex
	instances map[uuid.UUID]*domain.FlightInstance
}

func newMemLedger(instances ...*domain.FlightInstance) *memLedger {
	l := &memLedger{instances: make(map[uuid.UUID]*domain.FlightInstance)}
	for _, fi := range instances {
		copied := *fi
		l.instances[fi.ID] = &copied
	}
	return l
}

func (l *memLedger) available(id uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.instances[id].AvailableSeats
}

type memTx struct {
	l        *memLedger
	reserved map[uuid.UUID]int
	finished bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.finished {
		return nil
	}
	for id, seats := range t.reserved {
		t.l.instances[id].AvailableSeats -= seats
	}
	t.finished = true
	t.l.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.l.mu.Unlock()
	return nil
}

func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *memTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (l *memLedger) List(ctx context.Context) ([]domain.FlightInstance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.FlightInstance, 0, len(l.instances))
	for _, fi := range l.instances {
		out = append(out, *fi)
	}
	return out, nil
}

func (l *memLedger) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlightInstance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fi, ok := l.instances[id]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	copied := *fi
	return &copied, nil
}

func (l *memLedger) Begin(ctx context.Context) (repository.Tx, error) {
	l.mu.Lock()
	return &memTx{l: l, reserved: make(map[uuid.UUID]int)}, nil
}

func (l *memLedger) LockForUpdate(ctx context.Context, tx repository.Tx, id uuid.UUID) (*domain.FlightInstance, error) {
	t := tx.(*memTx)
	fi, ok := t.l.instances[id]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	copied := *fi
	return &copied, nil
}

func (l *memLedger) ReserveTx(ctx context.Context, tx repository.Tx, id uuid.UUID, seats int) (bool, error) {
	t := tx.(*memTx)
	fi, ok := t.l.instances[id]
	if !ok {
		return false, nil
	}
	pending := t.reserved[id]
	if !fi.Status.Bookable() || fi.AvailableSeats-pending < seats {
		return false, nil
	}
	t.reserved[id] = pending + seats
	return true, nil
}

func (l *memLedger) Reserve(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fi, ok := l.instances[id]
	if !ok || !fi.Status.Bookable() || fi.AvailableSeats < seats {
		return false, nil
	}
	fi.AvailableSeats -= seats
	return true, nil
}

func (l *memLedger) Release(ctx context.Context, id uuid.UUID, seats int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fi, ok := l.instances[id]
	if !ok {
		return domain.ErrInstanceNotFound
	}
	fi.AvailableSeats += seats
	if fi.AvailableSeats > fi.TotalSeats {
		fi.AvailableSeats = fi.TotalSeats
	}
	return nil
}

var _ repository.LedgerRepository = (*memLedger)(nil)

type memBookings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{rows: make(map[uuid.UUID]*domain.Booking)}
}

func (m *memBookings) backdate(id uuid.UUID, by time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].ExpiresAt = time.Now().Add(-by)
}

func (m *memBookings) CreatePending(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.Status = domain.BookingStatusPending
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	m.rows[booking.ID] = &copied
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memBookings) ConfirmPending(ctx context.Context, id uuid.UUID, ref string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != domain.BookingStatusPending {
		return nil, domain.ErrAlreadyFinalized
	}
	b.Status = domain.BookingStatusConfirmed
	b.ConfirmationRef = ref
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (m *memBookings) FinalizePending(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if !domain.BookingStatusPending.CanTransitionTo(status) {
		return nil, fmt.Errorf("cannot finalize booking into %s", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != domain.BookingStatusPending {
		return nil, domain.ErrAlreadyFinalized
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (m *memBookings) ListDuePending(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.Booking
	for _, b := range m.rows {
		if b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(deadline) {
			due = append(due, *b)
		}
	}
	return due, nil
}

var _ repository.BookingRepository = (*memBookings)(nil)
