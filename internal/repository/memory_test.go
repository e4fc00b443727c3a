package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

func seedShow(t *testing.T, s *MemoryStore) uint64 {
	t.Helper()
	sh := &model.Show{
		MovieTitle: "Test Movie",
		StartsAt:   time.Now().UTC().Add(time.Hour),
		PriceCents: 10000,
	}
	require.NoError(t, s.CreateShow(context.Background(), sh))
	return sh.ID
}

func TestMemoryStoreShowLookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetShow(ctx, 1)
	require.ErrorIs(t, err, booking.ErrNoRow)
	require.ErrorIs(t, s.LockShow(ctx, 1), booking.ErrNoRow)

	id := seedShow(t, s)
	sh, err := s.GetShow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test Movie", sh.MovieTitle)
	assert.NoError(t, s.LockShow(ctx, id))
}

func TestMemoryStoreUnavailableSeats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	showID := seedShow(t, s)
	now := time.Now().UTC()

	holds := []model.SeatHold{
		{HoldSetID: "set-1", ShowID: showID, SeatLabel: "A1", Status: model.HoldActive, ExpiresAt: now.Add(time.Minute)},
		{HoldSetID: "set-1", ShowID: showID, SeatLabel: "A2", Status: model.HoldActive, ExpiresAt: now.Add(time.Minute)},
		{HoldSetID: "set-2", ShowID: showID, SeatLabel: "B1", Status: model.HoldConsumed, ExpiresAt: now.Add(-time.Minute)},
		{HoldSetID: "set-3", ShowID: showID, SeatLabel: "C1", Status: model.HoldReleased, ExpiresAt: now.Add(time.Minute)},
		{HoldSetID: "set-4", ShowID: showID, SeatLabel: "D1", Status: model.HoldActive, ExpiresAt: now.Add(-time.Minute)},
	}
	require.NoError(t, s.CreateHolds(ctx, holds))

	// active-unexpired and consumed block; released and expired do not
	taken, err := s.UnavailableSeats(ctx, showID, []string{"A1", "A2", "B1", "C1", "D1", "E1"}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "B1"}, taken)

	// other shows are unaffected
	taken, err = s.UnavailableSeats(ctx, showID+1, []string{"A1"}, now)
	require.NoError(t, err)
	assert.Empty(t, taken)
}

func TestMemoryStoreSeatStates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	showID := seedShow(t, s)
	now := time.Now().UTC()

	holds := []model.SeatHold{
		{HoldSetID: "set-1", ShowID: showID, SeatLabel: "A1", Status: model.HoldActive, ExpiresAt: now.Add(time.Minute)},
		{HoldSetID: "set-2", ShowID: showID, SeatLabel: "B1", Status: model.HoldConsumed, ExpiresAt: now.Add(-time.Hour)},
		{HoldSetID: "set-3", ShowID: showID, SeatLabel: "C1", Status: model.HoldActive, ExpiresAt: now.Add(-time.Minute)},
	}
	require.NoError(t, s.CreateHolds(ctx, holds))

	states, err := s.SeatStates(ctx, showID, now)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, states["A1"])
	assert.Equal(t, model.SeatBooked, states["B1"])
	_, present := states["C1"]
	assert.False(t, present, "expired holds contribute no state")
}

func TestMemoryStoreSetHoldStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	showID := seedShow(t, s)
	now := time.Now().UTC()

	require.NoError(t, s.CreateHolds(ctx, []model.SeatHold{
		{HoldSetID: "set-1", ShowID: showID, SeatLabel: "A1", Status: model.HoldActive, ExpiresAt: now.Add(time.Minute)},
		{HoldSetID: "set-1", ShowID: showID, SeatLabel: "A2", Status: model.HoldActive, ExpiresAt: now.Add(time.Minute)},
	}))

	n, err := s.SetHoldStatus(ctx, "set-1", model.HoldActive, model.HoldReleased)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// second transition matches nothing
	n, err = s.SetHoldStatus(ctx, "set-1", model.HoldActive, model.HoldReleased)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStorePaymentStatusTransition(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := &model.Payment{
		ID: "pay-1", UserID: 1, ShowID: 1,
		Seats: []string{"A1"}, AmountCents: 10000,
		HoldSetID: "set-1", Status: model.PaymentCreated,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreatePayment(ctx, p))

	changed, err := s.SetPaymentStatus(ctx, "pay-1", model.PaymentCreated, model.PaymentVerified)
	require.NoError(t, err)
	assert.True(t, changed)

	// wrong from-status is a silent no-op, not an error
	changed, err = s.SetPaymentStatus(ctx, "pay-1", model.PaymentCreated, model.PaymentFailed)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentVerified, got.Status)

	_, err = s.SetPaymentStatus(ctx, "missing", model.PaymentCreated, model.PaymentFailed)
	require.ErrorIs(t, err, booking.ErrNoRow)
}

func TestMemoryStoreCreateBookingDuplicates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := &model.Booking{
		ID: "bk-1", PaymentID: "pay-1", UserID: 1,
		Seats: []string{"A1"}, TicketCode: "CODEAAAAAA",
		Status: model.BookingConfirmed, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateBooking(ctx, first))

	// same payment, fresh id and ticket code
	dupPayment := &model.Booking{
		ID: "bk-2", PaymentID: "pay-1", UserID: 1,
		Seats: []string{"A1"}, TicketCode: "CODEBBBBBB",
		Status: model.BookingConfirmed, CreatedAt: time.Now().UTC(),
	}
	require.ErrorIs(t, s.CreateBooking(ctx, dupPayment), booking.ErrDuplicate)

	// same ticket code, different payment
	dupTicket := &model.Booking{
		ID: "bk-3", PaymentID: "pay-2", UserID: 2,
		Seats: []string{"B1"}, TicketCode: "CODEAAAAAA",
		Status: model.BookingConfirmed, CreatedAt: time.Now().UTC(),
	}
	require.ErrorIs(t, s.CreateBooking(ctx, dupTicket), booking.ErrDuplicate)
}

func TestMemoryStoreCopiesSeatSlices(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seats := []string{"A1", "A2"}
	p := &model.Payment{ID: "pay-1", UserID: 1, Seats: seats, HoldSetID: "set-1", Status: model.PaymentCreated}
	require.NoError(t, s.CreatePayment(ctx, p))

	seats[0] = "Z9" // caller mutation must not leak into the store
	got, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, got.Seats)
}

func TestMemoryStoreNestedTransaction(t *testing.T) {
	s := NewMemoryStore()
	showID := seedShow(t, s)

	// nested WithTx joins the outer critical section instead of
	// deadlocking on the store mutex
	err := s.WithTx(context.Background(), func(ctx context.Context) error {
		return s.WithTx(ctx, func(ctx context.Context) error {
			return s.LockShow(ctx, showID)
		})
	})
	require.NoError(t, err)
}
