// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer pair for booking confirmations.
package queue

// BookingConfirmedEvent is published when a payment is finalized into
// a booking. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID  string   `json:"booking_id"`
	PaymentID  string   `json:"payment_id"`
	UserID     uint64   `json:"user_id"`
	ShowID     uint64   `json:"show_id"`
	Seats      []string `json:"seats"`
	TotalCents uint32   `json:"total_cents"`
	TicketCode string   `json:"ticket_code"`
	BookedAt   string   `json:"booked_at"`
}
