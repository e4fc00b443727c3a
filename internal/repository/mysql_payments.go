package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

const paymentColumns = `id, user_id, show_id, seats, amount_cents, order_id, client_secret, hold_set_id, status, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	var seats string
	err := row.Scan(&p.ID, &p.UserID, &p.ShowID, &seats, &p.AmountCents,
		&p.OrderID, &p.ClientSecret, &p.HoldSetID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Seats = model.SplitSeats(seats)
	return &p, nil
}

// CreatePayment inserts a new payment row.
func (s *MySQLStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (id, user_id, show_id, seats, amount_cents, order_id, client_secret, hold_set_id, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.q(ctx).ExecContext(ctx, q,
		p.ID, p.UserID, p.ShowID, model.JoinSeats(p.Seats), p.AmountCents,
		p.OrderID, p.ClientSecret, p.HoldSetID, string(p.Status), p.CreatedAt.UTC())
	return err
}

// GetPayment retrieves a payment by id.
func (s *MySQLStore) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	p, err := scanPayment(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNoRow
	}
	return p, err
}

// PaymentByHoldSet retrieves the payment owning a hold set.
func (s *MySQLStore) PaymentByHoldSet(ctx context.Context, holdSetID string) (*model.Payment, error) {
	p, err := scanPayment(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE hold_set_id = ?`, holdSetID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNoRow
	}
	return p, err
}

// SetPaymentStatus transitions a payment between statuses. It reports
// false when the payment was not in the expected from status, which
// keeps transitions append-only under concurrent callers.
func (s *MySQLStore) SetPaymentStatus(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error) {
	const q = `UPDATE payments SET status = ? WHERE id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PaymentsByUser lists a user's payments, newest first.
func (s *MySQLStore) PaymentsByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := s.q(ctx).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
