package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/metrics"
)

// DefaultHoldTTL bounds how long a checkout may block seats without a
// verified payment.
const DefaultHoldTTL = 10 * time.Minute

// Intent is the result of opening a checkout: an open payment plus the
// display snapshot of the show.
type Intent struct {
	PaymentID    string
	OrderID      string
	ClientSecret string
	AmountCents  uint32
	Seats        []string
	Show         model.ShowSnapshot
	ExpiresAt    time.Time
}

// IntentService validates a checkout request, acquires seat holds and
// opens a payment against the mock gateway. Exactly one hold set and
// one payment are created per successful call; after a conflict or
// expiry the caller must open a fresh intent, no retries happen here.
type IntentService struct {
	store   Store
	holds   *HoldManager
	gateway payment.Gateway
	holdTTL time.Duration
	now     func() time.Time
}

// NewIntentService builds an intent service. ttl <= 0 selects
// DefaultHoldTTL.
func NewIntentService(store Store, holds *HoldManager, gw payment.Gateway, ttl time.Duration) *IntentService {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &IntentService{store: store, holds: holds, gateway: gw, holdTTL: ttl, now: time.Now}
}

// CreateIntent opens a checkout for the given seats of the given show.
// Seat grammar and count violations surface as *ValidationError, an
// unknown show as *NotFoundError, a show already started as
// *ValidationError, and unavailable seats as *ConflictError carrying
// the conflicting subset.
func (s *IntentService) CreateIntent(ctx context.Context, userID, showID uint64, seats []string) (*Intent, error) {
	normalized, err := NormalizeSeatList(seats)
	if err != nil {
		return nil, err
	}

	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		if errors.Is(err, ErrNoRow) {
			return nil, &NotFoundError{Resource: "show"}
		}
		return nil, err
	}
	if !show.StartsAt.After(s.now().UTC()) {
		return nil, &ValidationError{Msg: "show has already started"}
	}

	amount := show.PriceCents * uint32(len(normalized))
	order, err := s.gateway.CreateOrder(amount)
	if err != nil {
		return nil, err
	}

	var intent *Intent
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		set, err := s.holds.Acquire(ctx, showID, normalized, s.holdTTL)
		if err != nil {
			return err
		}
		p := &model.Payment{
			ID:           uuid.NewString(),
			UserID:       userID,
			ShowID:       showID,
			Seats:        normalized,
			AmountCents:  amount,
			OrderID:      order.OrderID,
			ClientSecret: order.ClientSecret,
			HoldSetID:    set.ID,
			Status:       model.PaymentCreated,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.store.CreatePayment(ctx, p); err != nil {
			return err
		}
		intent = &Intent{
			PaymentID:    p.ID,
			OrderID:      p.OrderID,
			ClientSecret: p.ClientSecret,
			AmountCents:  p.AmountCents,
			Seats:        p.Seats,
			Show:         show.Snapshot(),
			ExpiresAt:    set.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.OrderAttempt("conflict")
		}
		return nil, err
	}
	metrics.OrderAttempt("created")
	return intent, nil
}
