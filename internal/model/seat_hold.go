package model

import "time"

// HoldStatus is the lifecycle state of a seat hold.
type HoldStatus string

const (
	HoldActive   HoldStatus = "ACTIVE"   // blocks the seat until it expires
	HoldReleased HoldStatus = "RELEASED" // freed by expiry or a failed payment
	HoldConsumed HoldStatus = "CONSUMED" // converted into a confirmed booking
)

// SeatHold is a temporary claim on one seat of one show during the
// checkout process.  Holds prevent concurrent checkouts from grabbing
// the same seat while a user is paying.  A hold blocks its seat only
// while ACTIVE and not yet past ExpiresAt; expiry is a computed
// predicate, not merely a side effect of the background reaper.
//
// All holds acquired in one checkout share a HoldSetID so they can be
// released or consumed together.
type SeatHold struct {
	ID        uint64     // seat_holds.id
	HoldSetID string     // seat_holds.hold_set_id, groups one checkout's holds
	ShowID    uint64     // seat_holds.show_id
	SeatLabel string     // seat_holds.seat_label, e.g. "A1"
	Status    HoldStatus // seat_holds.status
	ExpiresAt time.Time  // seat_holds.expires_at
	CreatedAt time.Time  // seat_holds.created_at
}

// Blocking reports whether the hold makes its seat unavailable at the
// given instant.  CONSUMED holds block forever (the seat is booked);
// ACTIVE holds block until they expire.
func (h *SeatHold) Blocking(now time.Time) bool {
	switch h.Status {
	case HoldConsumed:
		return true
	case HoldActive:
		return now.Before(h.ExpiresAt)
	default:
		return false
	}
}

// SeatState describes seat availability as exposed to clients.
type SeatState string

const (
	SeatFree   SeatState = "FREE"
	SeatHeld   SeatState = "HELD"
	SeatBooked SeatState = "BOOKED"
)
