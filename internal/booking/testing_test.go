package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
)

// memStore is a minimal in-memory Store backing the service tests.
// One mutex serializes WithTx bodies; nested WithTx calls join the
// enclosing critical section, mirroring the production stores.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	shows    map[uint64]model.Show
	holds    []model.SeatHold
	payments map[string]model.Payment
	bookings map[string]model.Booking
}

func newMemStore() *memStore {
	return &memStore{
		shows:    make(map[uint64]model.Show),
		payments: make(map[string]model.Payment),
		bookings: make(map[string]model.Booking),
	}
}

type memTxKey struct{}

func (s *memStore) locked(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, struct{}{}))
}

func (s *memStore) LockShow(ctx context.Context, showID uint64) error {
	defer s.locked(ctx)()
	if _, ok := s.shows[showID]; !ok {
		return ErrNoRow
	}
	return nil
}

func (s *memStore) addShow(sh model.Show) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sh.ID = s.nextID
	s.shows[sh.ID] = sh
	return sh.ID
}

func (s *memStore) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	defer s.locked(ctx)()
	sh, ok := s.shows[id]
	if !ok {
		return nil, ErrNoRow
	}
	return &sh, nil
}

func (s *memStore) CreateHolds(ctx context.Context, holds []model.SeatHold) error {
	defer s.locked(ctx)()
	for _, h := range holds {
		s.nextID++
		h.ID = s.nextID
		s.holds = append(s.holds, h)
	}
	return nil
}

func (s *memStore) HoldsBySet(ctx context.Context, holdSetID string) ([]model.SeatHold, error) {
	defer s.locked(ctx)()
	var out []model.SeatHold
	for _, h := range s.holds {
		if h.HoldSetID == holdSetID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memStore) UnavailableSeats(ctx context.Context, showID uint64, seats []string, now time.Time) ([]string, error) {
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
	for _, seat := range seats {
		if _, ok := taken[seat]; ok {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (s *memStore) SetHoldStatus(ctx context.Context, holdSetID string, from, to model.HoldStatus) (int64, error) {
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

func (s *memStore) ExpiredHoldSets(ctx context.Context, now time.Time) ([]string, error) {
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

func (s *memStore) SeatStates(ctx context.Context, showID uint64, now time.Time) (map[string]model.SeatState, error) {
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

func (s *memStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	defer s.locked(ctx)()
	s.payments[p.ID] = *p
	return nil
}

func (s *memStore) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	defer s.locked(ctx)()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrNoRow
	}
	return &p, nil
}

func (s *memStore) PaymentByHoldSet(ctx context.Context, holdSetID string) (*model.Payment, error) {
	defer s.locked(ctx)()
	for _, p := range s.payments {
		if p.HoldSetID == holdSetID {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNoRow
}

func (s *memStore) SetPaymentStatus(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error) {
	defer s.locked(ctx)()
	p, ok := s.payments[id]
	if !ok {
		return false, ErrNoRow
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	s.payments[id] = p
	return true, nil
}

func (s *memStore) PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	defer s.locked(ctx)()
	var out []model.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	defer s.locked(ctx)()
	for _, existing := range s.bookings {
		if existing.PaymentID == b.PaymentID || existing.TicketCode == b.TicketCode {
			return ErrDuplicate
		}
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) BookingByPayment(ctx context.Context, paymentID string) (*model.Booking, error) {
	defer s.locked(ctx)()
	for _, b := range s.bookings {
		if b.PaymentID == paymentID {
			cp := b
			return &cp, nil
		}
	}
	return nil, ErrNoRow
}

func (s *memStore) BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	defer s.locked(ctx)()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	defer s.locked(ctx)()
	for _, b := range s.bookings {
		if b.TicketCode == code {
			return true, nil
		}
	}
	return false, nil
}

var _ Store = (*memStore)(nil)

// fakeClock is an adjustable clock injected into the services' now
// fields so expiry behavior is deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv wires the full booking core over memStore with a fakeClock.
type testEnv struct {
	store   *memStore
	clock   *fakeClock
	gateway *payment.MockGateway
	ledger  *SeatLedger
	holds   *HoldManager
	intents *IntentService
	fin     *Finalizer
	verify  *Verifier
	showID  uint64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	clock := newFakeClock()

	ledger := NewSeatLedger(store)
	ledger.now = clock.Now
	holds := NewHoldManager(store, ledger)
	holds.now = clock.Now
	gw := payment.NewMockGateway()
	intents := NewIntentService(store, holds, gw, DefaultHoldTTL)
	intents.now = clock.Now
	fin := NewFinalizer(store, holds, nil)
	fin.now = clock.Now
	verify := NewVerifier(store, gw, holds, fin)

	showID := store.addShow(model.Show{
		MovieTitle: "Dune Part Two",
		CinemaName: "Grand Cinema",
		ScreenName: "IMAX",
		StartsAt:   clock.Now().Add(24 * time.Hour),
		PriceCents: 20000,
	})

	return &testEnv{
		store:   store,
		clock:   clock,
		gateway: gw,
		ledger:  ledger,
		holds:   holds,
		intents: intents,
		fin:     fin,
		verify:  verify,
		showID:  showID,
	}
}

// confirm builds a valid gateway confirmation for an intent.
func confirm(in *Intent) payment.Confirmation {
	return payment.Confirmation{
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Signature: "sig_test",
	}
}

// mustIntent opens a checkout and fails the test on any error.
func mustIntent(t *testing.T, env *testEnv, userID uint64, seats []string) *Intent {
	t.Helper()
	in, err := env.intents.CreateIntent(context.Background(), userID, env.showID, seats)
	require.NoError(t, err)
	require.NotNil(t, in)
	return in
}
