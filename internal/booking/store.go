package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// ErrNoRow is the store-level sentinel for an absent record. Services
// map it onto the typed NotFoundError for the resource they were
// looking up.
var ErrNoRow = errors.New("no matching row")

// ErrDuplicate is the store-level sentinel for an insert rejected by a
// uniqueness constraint. The finalizer relies on it to detect that a
// concurrent finalize already committed a booking for the payment.
var ErrDuplicate = errors.New("row already exists")

// Store is the persistence surface the booking core runs against. The
// MySQL implementation backs WithTx with a database transaction; the
// in-memory implementation serializes WithTx bodies behind a mutex.
// Either way, a WithTx body observes and mutates a consistent snapshot
// and concurrent WithTx bodies touching the same show are serialized.
//
// Methods called with a context produced by WithTx participate in that
// transaction; called outside, they are single atomic operations.
type Store interface {
	// WithTx runs fn atomically. Nested calls join the enclosing
	// transaction. If fn returns an error nothing fn wrote is kept
	// (the MySQL store rolls back; services therefore only write
	// after all checks have passed).
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// LockShow serializes the current transaction against all other
	// writers of the same show. Must be called inside WithTx before
	// reading seat availability that a write will depend on.
	LockShow(ctx context.Context, showID uint64) error

	GetShow(ctx context.Context, id uint64) (*model.Show, error)

	// Seat ledger rows.
	CreateHolds(ctx context.Context, holds []model.SeatHold) error
	HoldsBySet(ctx context.Context, holdSetID string) ([]model.SeatHold, error)
	// UnavailableSeats returns the subset of seats that are blocked
	// for the show at the given instant by an unexpired ACTIVE hold,
	// a CONSUMED hold, or a confirmed booking.
	UnavailableSeats(ctx context.Context, showID uint64, seats []string, now time.Time) ([]string, error)
	// SetHoldStatus transitions every hold of the set currently in
	// status from to status to and reports how many rows changed.
	SetHoldStatus(ctx context.Context, holdSetID string, from, to model.HoldStatus) (int64, error)
	// ExpiredHoldSets lists the distinct hold sets that still carry
	// at least one ACTIVE hold past its deadline.
	ExpiredHoldSets(ctx context.Context, now time.Time) ([]string, error)
	SeatStates(ctx context.Context, showID uint64, now time.Time) (map[string]model.SeatState, error)

	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPayment(ctx context.Context, id string) (*model.Payment, error)
	PaymentByHoldSet(ctx context.Context, holdSetID string) (*model.Payment, error)
	// SetPaymentStatus transitions the payment from one status to
	// another. It reports false without error when the payment is not
	// currently in the from status, so status transitions stay
	// append-only under concurrency.
	SetPaymentStatus(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error)
	PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error)

	// CreateBooking inserts a booking row. It returns ErrDuplicate
	// when a booking for the payment or the ticket code already
	// exists, so concurrent finalizations surface as a detectable
	// condition instead of a raw constraint error.
	CreateBooking(ctx context.Context, b *model.Booking) error
	BookingByPayment(ctx context.Context, paymentID string) (*model.Booking, error)
	BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	TicketCodeExists(ctx context.Context, code string) (bool, error)
}
