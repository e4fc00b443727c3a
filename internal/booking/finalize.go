package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/metrics"
)

// errHoldInvalid signals inside the finalization transaction that the
// payment's holds are no longer usable. It never leaves Finalize.
var errHoldInvalid = errors.New("hold set no longer valid")

const ticketCodeLen = 10

// BookingAnnouncer publishes confirmed bookings to interested
// consumers. Publishing is best-effort; a failed announcement must
// never fail the booking.
type BookingAnnouncer interface {
	AnnounceBookingConfirmed(ctx context.Context, b *model.Booking)
}

// Finalizer atomically converts a verified payment plus its still
// valid hold set into a permanent booking.
type Finalizer struct {
	store    Store
	holds    *HoldManager
	announce BookingAnnouncer // optional
	now      func() time.Time
}

// NewFinalizer builds a finalizer. announce may be nil.
func NewFinalizer(store Store, holds *HoldManager, announce BookingAnnouncer) *Finalizer {
	return &Finalizer{store: store, holds: holds, announce: announce, now: time.Now}
}

// Finalize turns a VERIFIED payment into a CONFIRMED booking and
// consumes its holds, all in one transaction. When the hold set has
// expired or was consumed by a concurrent path, the payment moves to
// FAILED, remaining holds are released, and a *ConflictError is
// returned: the seats are lost to this payment permanently.
//
// Finalize is idempotent at the payment level: a payment that already
// produced a booking gets that booking back unchanged.
func (f *Finalizer) Finalize(ctx context.Context, p *model.Payment) (*model.Booking, error) {
	if p.Status != model.PaymentVerified {
		return nil, &InvalidStateError{Msg: "payment is not verified"}
	}

	var result *model.Booking
	err := f.store.WithTx(ctx, func(ctx context.Context) error {
		// a concurrent or repeated finalize may already have won
		if existing, err := f.store.BookingByPayment(ctx, p.ID); err == nil {
			result = existing
			return nil
		} else if !errors.Is(err, ErrNoRow) {
			return err
		}

		valid, err := f.holds.IsValid(ctx, p.HoldSetID)
		if err != nil {
			return err
		}
		if !valid {
			return errHoldInvalid
		}

		code, err := f.uniqueTicketCode(ctx)
		if err != nil {
			return err
		}
		b := &model.Booking{
			ID:         uuid.NewString(),
			PaymentID:  p.ID,
			UserID:     p.UserID,
			ShowID:     p.ShowID,
			Seats:      p.Seats,
			TotalCents: p.AmountCents,
			TicketCode: code,
			Status:     model.BookingConfirmed,
			CreatedAt:  f.now().UTC(),
		}
		if err := f.store.CreateBooking(ctx, b); err != nil {
			return err
		}
		if err := f.holds.Consume(ctx, p.HoldSetID); err != nil {
			return err
		}
		result = b
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			// a concurrent finalize committed a booking for this payment
			// after our snapshot reads; its booking is the result. The
			// re-read runs outside the rolled-back transaction so it
			// sees the committed row.
			existing, rerr := f.store.BookingByPayment(ctx, p.ID)
			if rerr == nil {
				return existing, nil
			}
			return nil, err
		}
		var conflict *ConflictError
		if errors.Is(err, errHoldInvalid) || errors.As(err, &conflict) {
			// committed side effect, separate from the rolled-back
			// booking transaction: the payment fails and its seats
			// are freed immediately
			if ferr := f.failAndRelease(ctx, p); ferr != nil {
				logger.Error("failed to release holds of conflicted payment",
					zap.String("payment_id", p.ID), zap.Error(ferr))
			}
			metrics.BookingAttempt("conflict")
			return nil, &ConflictError{Reason: "hold expired or consumed"}
		}
		return nil, err
	}

	metrics.BookingAttempt("confirmed")
	if f.announce != nil {
		f.announce.AnnounceBookingConfirmed(ctx, result)
	}
	return result, nil
}

// failAndRelease moves the payment to FAILED and releases any holds
// still ACTIVE, in their own committed transaction.
func (f *Finalizer) failAndRelease(ctx context.Context, p *model.Payment) error {
	return f.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := f.store.SetPaymentStatus(ctx, p.ID, model.PaymentVerified, model.PaymentFailed); err != nil {
			return err
		}
		return f.holds.Release(ctx, p.HoldSetID)
	})
}

// uniqueTicketCode generates a ticket code and re-rolls on the
// unlikely collision with an existing booking.
func (f *Finalizer) uniqueTicketCode(ctx context.Context) (string, error) {
	for {
		code, err := randomTicketCode(ticketCodeLen)
		if err != nil {
			return "", err
		}
		exists, err := f.store.TicketCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

const ticketCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomTicketCode builds a human-presentable code from an unambiguous
// alphabet (no 0/O, 1/I).
func randomTicketCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = ticketCodeChars[int(buf[i])%len(ticketCodeChars)]
	}
	return string(buf), nil
}
