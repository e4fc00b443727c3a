// Package booking implements the seat reservation and booking
// finalization core: the seat ledger, hold lifecycle, payment intents,
// payment verification and the atomic conversion of a verified payment
// into a permanent booking.
package booking

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed request: bad seat identifiers,
// seat count out of bounds, or an invalid show reference. Handlers
// translate it into an HTTP 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an absent show or payment. Handlers translate
// it into an HTTP 404 response.
type NotFoundError struct {
	Resource string // "show" or "payment"
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ForbiddenError reports an attempt to operate on a payment owned by
// another user. Handlers translate it into an HTTP 403 response.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string { return "forbidden" }

// ConflictError reports that requested seats are already claimed, or
// that a hold expired or was consumed before finalization. Seats
// carries the exact conflicting subset when known so clients can offer
// reselection instead of retrying blindly. Handlers translate it into
// an HTTP 409 response.
type ConflictError struct {
	Seats  []string
	Reason string
}

func (e *ConflictError) Error() string {
	if len(e.Seats) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Seats, ","))
	}
	return e.Reason
}

// VerificationError reports a rejected gateway confirmation. Handlers
// translate it into an HTTP 400 response.
type VerificationError struct {
	Msg string
}

func (e *VerificationError) Error() string { return e.Msg }

// InvalidStateError reports an operation attempted on a payment in the
// wrong status, such as re-verifying a FAILED payment.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }
