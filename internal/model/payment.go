package model

import (
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state of a payment.  Transitions are
// append-only: CREATED moves to VERIFIED or FAILED and never reverts.
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "CREATED"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Payment is an open checkout: a batch of held seats awaiting gateway
// confirmation.  The seat set is fixed at creation and must exactly
// equal the seat set of the hold set it owns.
//
// Fields:
//  ID           – primary key (UUID).
//  UserID       – user who opened the checkout.
//  ShowID       – show being booked.
//  Seats        – seat labels covered by this payment.
//  AmountCents  – price × seat count, fixed at creation.
//  OrderID      – gateway order identifier bound to this payment.
//  ClientSecret – gateway client secret returned to the client.
//  HoldSetID    – hold set owned by this payment.
//  Status       – CREATED, VERIFIED or FAILED.
//  CreatedAt    – creation timestamp.
type Payment struct {
	ID           string        // payments.id
	UserID       uint64        // payments.user_id
	ShowID       uint64        // payments.show_id
	Seats        []string      // payments.seats (comma-joined in MySQL)
	AmountCents  uint32        // payments.amount_cents
	OrderID      string        // payments.order_id
	ClientSecret string        // payments.client_secret
	HoldSetID    string        // payments.hold_set_id
	Status       PaymentStatus // payments.status
	CreatedAt    time.Time     // payments.created_at
}

// JoinSeats encodes a seat list for single-column storage.
func JoinSeats(seats []string) string { return strings.Join(seats, ",") }

// SplitSeats decodes a seat list stored with JoinSeats.
func SplitSeats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
