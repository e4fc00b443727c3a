package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// HoldSet is one checkout's claim on a batch of seats. Every hold in
// the set shares the identifier, the show and the deadline.
type HoldSet struct {
	ID        string
	ShowID    uint64
	Seats     []string
	ExpiresAt time.Time
}

// HoldManager wraps the seat ledger with hold lifecycle operations:
// acquire, release, consume and validity checks. It is the only
// component that transitions hold rows between states.
type HoldManager struct {
	store  Store
	ledger *SeatLedger
	now    func() time.Time
}

// NewHoldManager builds a hold manager over the given store and ledger.
func NewHoldManager(store Store, ledger *SeatLedger) *HoldManager {
	return &HoldManager{store: store, ledger: ledger, now: time.Now}
}

// Acquire reserves the seats through the ledger under a fresh hold set
// identifier. On conflict the ledger's *ConflictError propagates
// unchanged, carrying the conflicting seat subset.
func (m *HoldManager) Acquire(ctx context.Context, showID uint64, seats []string, ttl time.Duration) (*HoldSet, error) {
	id := uuid.NewString()
	holds, err := m.ledger.Reserve(ctx, showID, seats, id, ttl)
	if err != nil {
		return nil, err
	}
	return &HoldSet{
		ID:        id,
		ShowID:    showID,
		Seats:     seats,
		ExpiresAt: holds[0].ExpiresAt,
	}, nil
}

// Release marks every ACTIVE hold of the set RELEASED, freeing its
// seats. Releasing an already released or consumed set is a no-op, not
// an error.
func (m *HoldManager) Release(ctx context.Context, holdSetID string) error {
	_, err := m.store.SetHoldStatus(ctx, holdSetID, model.HoldActive, model.HoldReleased)
	return err
}

// Consume marks every hold of the set CONSUMED. It fails with a
// *ConflictError when the set is missing or when any hold is expired
// or no longer ACTIVE, so a stale checkout can never be promoted to a
// booking. Callers run it inside the finalization transaction.
func (m *HoldManager) Consume(ctx context.Context, holdSetID string) error {
	holds, err := m.store.HoldsBySet(ctx, holdSetID)
	if err != nil {
		return err
	}
	if len(holds) == 0 {
		return &ConflictError{Reason: "hold not found"}
	}
	now := m.now().UTC()
	for _, h := range holds {
		if h.Status != model.HoldActive || !now.Before(h.ExpiresAt) {
			return &ConflictError{Reason: "hold expired"}
		}
	}
	n, err := m.store.SetHoldStatus(ctx, holdSetID, model.HoldActive, model.HoldConsumed)
	if err != nil {
		return err
	}
	if n != int64(len(holds)) {
		return &ConflictError{Reason: "hold expired"}
	}
	return nil
}

// IsValid reports whether every hold of the set is ACTIVE and not yet
// past its deadline. Validity is computed from the clock; it does not
// wait for the reaper to sweep.
func (m *HoldManager) IsValid(ctx context.Context, holdSetID string) (bool, error) {
	holds, err := m.store.HoldsBySet(ctx, holdSetID)
	if err != nil {
		return false, err
	}
	if len(holds) == 0 {
		return false, nil
	}
	now := m.now().UTC()
	for _, h := range holds {
		if h.Status != model.HoldActive || !now.Before(h.ExpiresAt) {
			return false, nil
		}
	}
	return true, nil
}

// SweepExpired releases every hold set with ACTIVE holds past their
// deadline and fails any CREATED payment owning such a set, so a stale
// intent cannot later be verified against seats that have been freed.
// It returns the number of hold sets released. The background reaper
// is its only caller.
func (m *HoldManager) SweepExpired(ctx context.Context) (int, error) {
	released := 0
	err := m.store.WithTx(ctx, func(ctx context.Context) error {
		sets, err := m.store.ExpiredHoldSets(ctx, m.now().UTC())
		if err != nil {
			return err
		}
		for _, setID := range sets {
			if err := m.Release(ctx, setID); err != nil {
				return err
			}
			p, err := m.store.PaymentByHoldSet(ctx, setID)
			switch {
			case err == nil:
				if _, err := m.store.SetPaymentStatus(ctx, p.ID, model.PaymentCreated, model.PaymentFailed); err != nil {
					return err
				}
			case errors.Is(err, ErrNoRow):
				// hold set without a payment; nothing to fail
			default:
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}
