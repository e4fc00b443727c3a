package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is the permanent record produced when a verified payment is
// finalized.  It is immutable once CONFIRMED; the ticket code is
// generated exactly once and is globally unique.
//
// Fields:
//  ID          – primary key (UUID).
//  PaymentID   – payment that produced this booking; one booking per payment.
//  UserID      – owner of the booking.
//  ShowID      – show the seats belong to.
//  Seats       – booked seat labels.
//  TotalCents  – total price paid, copied from the payment amount.
//  TicketCode  – unique human-presentable code stamped on the ticket.
//  Status      – CONFIRMED or CANCELLED.
//  CreatedAt   – confirmation timestamp.
type Booking struct {
	ID         string        // bookings.id
	PaymentID  string        // bookings.payment_id
	UserID     uint64        // bookings.user_id
	ShowID     uint64        // bookings.show_id
	Seats      []string      // bookings.seats (comma-joined in MySQL)
	TotalCents uint32        // bookings.total_cents
	TicketCode string        // bookings.ticket_code
	Status     BookingStatus // bookings.status
	CreatedAt  time.Time     // bookings.created_at
}
