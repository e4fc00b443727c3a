package booking

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// SeatLedger is the authoritative record of which seats are currently
// unavailable for a show, via unexpired active holds, consumed holds or
// confirmed bookings. Reserve is the only seat-acquiring primitive in
// the system; per-show seat state is never mutated outside Reserve and
// the HoldManager release/consume operations.
type SeatLedger struct {
	store Store
	now   func() time.Time
}

// NewSeatLedger builds a ledger over the given store.
func NewSeatLedger(store Store) *SeatLedger {
	return &SeatLedger{store: store, now: time.Now}
}

// IsAvailable reports whether every requested seat is currently free.
func (l *SeatLedger) IsAvailable(ctx context.Context, showID uint64, seats []string) (bool, error) {
	var taken []string
	err := l.store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		taken, err = l.store.UnavailableSeats(ctx, showID, seats, l.now().UTC())
		return err
	})
	if err != nil {
		return false, err
	}
	return len(taken) == 0, nil
}

// Reserve atomically creates ACTIVE holds for every requested seat, or
// none. On conflict it returns a *ConflictError carrying exactly the
// subset of requested seats that were already unavailable, so the
// caller can offer reselection. The show row is locked for the length
// of the check-and-insert, which makes two conflicting reservation
// attempts on the same show serialize: exactly one succeeds, first
// committer wins.
func (l *SeatLedger) Reserve(ctx context.Context, showID uint64, seats []string, holdSetID string, ttl time.Duration) ([]model.SeatHold, error) {
	var created []model.SeatHold
	err := l.store.WithTx(ctx, func(ctx context.Context) error {
		if err := l.store.LockShow(ctx, showID); err != nil {
			return err
		}
		now := l.now().UTC()
		taken, err := l.store.UnavailableSeats(ctx, showID, seats, now)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return &ConflictError{Seats: taken, Reason: "seats unavailable"}
		}
		expiresAt := now.Add(ttl)
		holds := make([]model.SeatHold, 0, len(seats))
		for _, seat := range seats {
			holds = append(holds, model.SeatHold{
				HoldSetID: holdSetID,
				ShowID:    showID,
				SeatLabel: seat,
				Status:    model.HoldActive,
				ExpiresAt: expiresAt,
				CreatedAt: now,
			})
		}
		if err := l.store.CreateHolds(ctx, holds); err != nil {
			return err
		}
		created = holds
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SeatMap returns the availability state of every seat of the show's
// fixed grid, FREE unless the ledger blocks it.
func (l *SeatLedger) SeatMap(ctx context.Context, showID uint64) (map[string]model.SeatState, error) {
	states, err := l.store.SeatStates(ctx, showID, l.now().UTC())
	if err != nil {
		return nil, err
	}
	full := make(map[string]model.SeatState, 100)
	for _, label := range AllSeatLabels() {
		full[label] = model.SeatFree
	}
	for label, st := range states {
		full[label] = st
	}
	return full, nil
}
