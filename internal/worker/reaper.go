package worker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/vporoshin/aeroreserve/internal/service/booking"
)

// SweepLocker elects a single sweeper when several workers run; nil means
// this process sweeps unconditionally.
type SweepLocker interface {
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

// Reaper periodically reclaims holds past their deadline. A tick that arrives
// while the previous sweep is still running is dropped, so at most one sweep
// is active per process.
type Reaper struct {
	bookings booking.BookingUseCase
	locker   SweepLocker
	interval time.Duration
	running  atomic.Bool
}

func NewReaper(bookings booking.BookingUseCase, locker SweepLocker, interval time.Duration) *Reaper {
	return &Reaper{
		bookings: bookings,
		locker:   locker,
		interval: interval,
	}
}

func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) Sweep(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	defer r.running.Store(false)

	if r.locker != nil {
		ok, err := r.locker.AcquireSweepLock(ctx, r.interval)
		if err != nil {
			log.Printf("acquire sweep lock: %v", err)
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := r.locker.ReleaseSweepLock(ctx); err != nil {
				log.Printf("release sweep lock: %v", err)
			}
		}()
	}

	expired, err := r.bookings.ExpireDueHolds(ctx)
	if err != nil {
		log.Printf("expiry sweep: %v", err)
		return
	}
	if len(expired) > 0 {
		log.Printf("expired %d bookings", len(expired))
	}
}
