package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
)

// Verifier validates payment confirmations against the gateway and
// hands verified payments to the finalizer. The HTTP caller observes
// one combined verify-and-finalize result.
type Verifier struct {
	store     Store
	gateway   payment.Gateway
	holds     *HoldManager
	finalizer *Finalizer
}

// NewVerifier builds a verifier.
func NewVerifier(store Store, gw payment.Gateway, holds *HoldManager, fin *Finalizer) *Verifier {
	return &Verifier{store: store, gateway: gw, holds: holds, finalizer: fin}
}

// Verify checks ownership, payment state and the gateway confirmation,
// then finalizes the booking synchronously.
//
// A payment that is not CREATED cannot be re-verified and surfaces as
// *InvalidStateError. A rejected confirmation moves the payment to
// FAILED, releases its holds so the seats free up immediately, and
// surfaces as *VerificationError.
func (v *Verifier) Verify(ctx context.Context, userID uint64, paymentID string, c payment.Confirmation) (*model.Booking, error) {
	p, err := v.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrNoRow) {
			return nil, &NotFoundError{Resource: "payment"}
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, &ForbiddenError{}
	}
	if p.Status != model.PaymentCreated {
		return nil, &InvalidStateError{Msg: "payment already " + string(p.Status)}
	}

	if !v.gateway.VerifyConfirmation(p.OrderID, c) {
		err := v.store.WithTx(ctx, func(ctx context.Context) error {
			if _, err := v.store.SetPaymentStatus(ctx, p.ID, model.PaymentCreated, model.PaymentFailed); err != nil {
				return err
			}
			return v.holds.Release(ctx, p.HoldSetID)
		})
		if err != nil {
			return nil, err
		}
		return nil, &VerificationError{Msg: "payment verification failed"}
	}

	changed, err := v.store.SetPaymentStatus(ctx, p.ID, model.PaymentCreated, model.PaymentVerified)
	if err != nil {
		return nil, err
	}
	if !changed {
		// lost a race with the reaper or another verify call
		return nil, &InvalidStateError{Msg: "payment state changed concurrently"}
	}
	p.Status = model.PaymentVerified

	return v.finalizer.Finalize(ctx, p)
}
