package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// MemoryStore implements booking.Store with mutex-guarded maps. It
// backs tests and single-process deployments. One store-wide mutex
// serializes WithTx bodies, which satisfies the per-show exclusion the
// ledger requires; the store hands out copies so callers can never
// mutate shared state outside a transaction.
//
// Unlike the MySQL store it cannot roll back, so transaction bodies
// must perform their writes only after every check has passed — the
// discipline the booking services already follow.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint64
	shows    map[uint64]model.Show
	holds    []model.SeatHold
	payments map[string]model.Payment
	bookings map[string]model.Booking
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shows:    make(map[uint64]model.Show),
		payments: make(map[string]model.Payment),
		bookings: make(map[string]model.Booking),
	}
}

type memTxKey struct{}

// locked acquires the store mutex unless the context already runs
// inside a WithTx body holding it. Usage: defer s.locked(ctx)().
func (s *MemoryStore) locked(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx serializes fn behind the store mutex. Nested calls join the
// enclosing critical section.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, struct{}{}))
}

// LockShow verifies the show exists; mutual exclusion is already
// provided by the store mutex held for the whole transaction.
func (s *MemoryStore) LockShow(ctx context.Context, showID uint64) error {
	defer s.locked(ctx)()
	if _, ok := s.shows[showID]; !ok {
		return booking.ErrNoRow
	}
	return nil
}

// CreateShow registers a show, assigning its id. Seeding/test helper.
func (s *MemoryStore) CreateShow(ctx context.Context, sh *model.Show) error {
	defer s.locked(ctx)()
	s.nextID++
	sh.ID = s.nextID
	s.shows[sh.ID] = *sh
	return nil
}

func (s *MemoryStore) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	defer s.locked(ctx)()
	sh, ok := s.shows[id]
	if !ok {
		return nil, booking.ErrNoRow
	}
	return &sh, nil
}

func (s *MemoryStore) CreateHolds(ctx context.Context, holds []model.SeatHold) error {
	defer s.locked(ctx)()
	for _, h := range holds {
		s.nextID++
		h.ID = s.nextID
		s.holds = append(s.holds, h)
	}
	return nil
}

func (s *MemoryStore) HoldsBySet(ctx context.Context, holdSetID string) ([]model.SeatHold, error) {
	defer s.locked(ctx)()
	var out []model.SeatHold
	for _, h := range s.holds {
		if h.HoldSetID == holdSetID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *MemoryStore) UnavailableSeats(ctx context.Context, showID uint64, seats []string, now time.Time) ([]string, error) {
	defer s.locked(ctx)()
	requested := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		requested[seat] = struct{}{}
	}
	taken := make(map[string]struct{})
	for _, h := range s.holds {
		if h.ShowID != showID {
			continue
		}
		if _, want := requested[h.SeatLabel]; !want {
			continue
		}
		if h.Blocking(now) {
			taken[h.SeatLabel] = struct{}{}
		}
	}
	out := make([]string, 0, len(taken))
	for _, seat := range seats { // preserve request order
		if _, ok := taken[seat]; ok {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetHoldStatus(ctx context.Context, holdSetID string, from, to model.HoldStatus) (int64, error) {
	defer s.locked(ctx)()
	var n int64
	for i := range s.holds {
		if s.holds[i].HoldSetID == holdSetID && s.holds[i].Status == from {
			s.holds[i].Status = to
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ExpiredHoldSets(ctx context.Context, now time.Time) ([]string, error) {
	defer s.locked(ctx)()
	seen := make(map[string]struct{})
	var sets []string
	for _, h := range s.holds {
		if h.Status != model.HoldActive || now.Before(h.ExpiresAt) {
			continue
		}
		if _, dup := seen[h.HoldSetID]; dup {
			continue
		}
		seen[h.HoldSetID] = struct{}{}
		sets = append(sets, h.HoldSetID)
	}
	return sets, nil
}

func (s *MemoryStore) SeatStates(ctx context.Context, showID uint64, now time.Time) (map[string]model.SeatState, error) {
	defer s.locked(ctx)()
	states := make(map[string]model.SeatState)
	for _, h := range s.holds {
		if h.ShowID != showID || !h.Blocking(now) {
			continue
		}
		if h.Status == model.HoldConsumed {
			states[h.SeatLabel] = model.SeatBooked
		} else if states[h.SeatLabel] != model.SeatBooked {
			states[h.SeatLabel] = model.SeatHeld
		}
	}
	return states, nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	defer s.locked(ctx)()
	cp := *p
	cp.Seats = append([]string(nil), p.Seats...)
	s.payments[p.ID] = cp
	return nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	defer s.locked(ctx)()
	p, ok := s.payments[id]
	if !ok {
		return nil, booking.ErrNoRow
	}
	p.Seats = append([]string(nil), p.Seats...)
	return &p, nil
}

func (s *MemoryStore) PaymentByHoldSet(ctx context.Context, holdSetID string) (*model.Payment, error) {
	defer s.locked(ctx)()
	for _, p := range s.payments {
		if p.HoldSetID == holdSetID {
			cp := p
			cp.Seats = append([]string(nil), p.Seats...)
			return &cp, nil
		}
	}
	return nil, booking.ErrNoRow
}

func (s *MemoryStore) SetPaymentStatus(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error) {
	defer s.locked(ctx)()
	p, ok := s.payments[id]
	if !ok {
		return false, booking.ErrNoRow
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	s.payments[id] = p
	return true, nil
}

func (s *MemoryStore) PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	defer s.locked(ctx)()
	var out []model.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			cp := p
			cp.Seats = append([]string(nil), p.Seats...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	defer s.locked(ctx)()
	// mirror the MySQL unique keys on payment_id and ticket_code
	for _, existing := range s.bookings {
		if existing.PaymentID == b.PaymentID || existing.TicketCode == b.TicketCode {
			return booking.ErrDuplicate
		}
	}
	cp := *b
	cp.Seats = append([]string(nil), b.Seats...)
	s.bookings[b.ID] = cp
	return nil
}

func (s *MemoryStore) BookingByPayment(ctx context.Context, paymentID string) (*model.Booking, error) {
	defer s.locked(ctx)()
	for _, b := range s.bookings {
		if b.PaymentID == paymentID {
			cp := b
			cp.Seats = append([]string(nil), b.Seats...)
			return &cp, nil
		}
	}
	return nil, booking.ErrNoRow
}

func (s *MemoryStore) BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	defer s.locked(ctx)()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			cp := b
			cp.Seats = append([]string(nil), b.Seats...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	defer s.locked(ctx)()
	for _, b := range s.bookings {
		if b.TicketCode == code {
			return true, nil
		}
	}
	return false, nil
}
