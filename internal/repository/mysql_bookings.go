package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

const bookingColumns = `id, payment_id, user_id, show_id, seats, total_cents, ticket_code, status, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var seats string
	err := row.Scan(&b.ID, &b.PaymentID, &b.UserID, &b.ShowID, &seats,
		&b.TotalCents, &b.TicketCode, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Seats = model.SplitSeats(seats)
	return &b, nil
}

// ER_DUP_ENTRY, the MySQL error code for a violated unique key.
const errDupEntry = 1062

// CreateBooking inserts a booking row. A violation of the unique keys
// on payment_id or ticket_code surfaces as booking.ErrDuplicate; under
// REPEATABLE READ a concurrent finalize's committed booking is
// invisible to this transaction's earlier snapshot reads, so the
// constraint is where that race actually materializes.
func (s *MySQLStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, payment_id, user_id, show_id, seats, total_cents, ticket_code, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.q(ctx).ExecContext(ctx, q,
		b.ID, b.PaymentID, b.UserID, b.ShowID, model.JoinSeats(b.Seats),
		b.TotalCents, b.TicketCode, string(b.Status), b.CreatedAt.UTC())
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return booking.ErrDuplicate
	}
	return err
}

// BookingByPayment retrieves the booking produced by a payment.
func (s *MySQLStore) BookingByPayment(ctx context.Context, paymentID string) (*model.Booking, error) {
	b, err := scanBooking(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE payment_id = ?`, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNoRow
	}
	return b, err
}

// BookingsByUser lists a user's bookings, newest first.
func (s *MySQLStore) BookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// TicketCodeExists reports whether a booking already carries the code.
func (s *MySQLStore) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.q(ctx).QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE ticket_code = ?`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
