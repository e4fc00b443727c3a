package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
)

func TestVerifyHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := mustIntent(t, env, 7, []string{"A1", "A2"})

	b, err := env.verify.Verify(ctx, 7, in.PaymentID, confirm(in))
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, []string{"A1", "A2"}, b.Seats)
	assert.Equal(t, uint32(40000), b.TotalCents)
	assert.Len(t, b.TicketCode, 10)
	assert.Equal(t, uint64(7), b.UserID)

	p, err := env.store.GetPayment(ctx, in.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentVerified, p.Status)

	// booked seats stay unavailable forever
	ok, err := env.ledger.IsAvailable(ctx, env.showID, []string{"A1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyUnknownPayment(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.verify.Verify(context.Background(), 1, "missing", payment.Confirmation{})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "payment", nf.Resource)
}

func TestVerifyForbidden(t *testing.T) {
	env := newTestEnv(t)
	in := mustIntent(t, env, 7, []string{"A1"})

	_, err := env.verify.Verify(context.Background(), 8, in.PaymentID, confirm(in))
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// the payment is untouched by the rejected attempt
	p, err := env.store.GetPayment(context.Background(), in.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCreated, p.Status)
}

func TestVerifyRejectedConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := mustIntent(t, env, 7, []string{"A1", "A2"})

	bad := confirm(in)
	bad.OrderID = "order_wrong"
	_, err := env.verify.Verify(ctx, 7, in.PaymentID, bad)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)

	// the payment failed and its seats freed up immediately
	p, err := env.store.GetPayment(ctx, in.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.Status)
	ok, err := env.ledger.IsAvailable(ctx, env.showID, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.True(t, ok)

	// a failed payment cannot be retried
	_, err = env.verify.Verify(ctx, 7, in.PaymentID, confirm(in))
	var badState *InvalidStateError
	require.ErrorAs(t, err, &badState)
}

func TestVerifyTwiceReturnsInvalidState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := mustIntent(t, env, 7, []string{"B1"})
	_, err := env.verify.Verify(ctx, 7, in.PaymentID, confirm(in))
	require.NoError(t, err)

	_, err = env.verify.Verify(ctx, 7, in.PaymentID, confirm(in))
	var badState *InvalidStateError
	require.ErrorAs(t, err, &badState)
	assert.Contains(t, badState.Msg, "VERIFIED")
}

func TestVerifyExpiredHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := mustIntent(t, env, 7, []string{"A1"})
	env.clock.Advance(DefaultHoldTTL + time.Second)

	_, err := env.verify.Verify(ctx, 7, in.PaymentID, confirm(in))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// the payment failed; the seat is claimable by someone else
	p, err := env.store.GetPayment(ctx, in.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.Status)
	ok, err := env.ledger.IsAvailable(ctx, env.showID, []string{"A1"})
	require.NoError(t, err)
	assert.True(t, ok)

	// no booking exists for the payment
	_, err = env.store.BookingByPayment(ctx, in.PaymentID)
	require.ErrorIs(t, err, ErrNoRow)
}
