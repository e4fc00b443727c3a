package repository

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// Seat availability is derived entirely from seat_holds rows: a seat
// is blocked while it has an unexpired ACTIVE hold or a CONSUMED hold.
// CONSUMED rows are permanent and mirror the seats of a confirmed
// booking, which keeps active holds and bookings disjoint by
// construction.

// CreateHolds inserts one row per held seat in a single statement.
func (s *MySQLStore) CreateHolds(ctx context.Context, holds []model.SeatHold) error {
	if len(holds) == 0 {
		return nil
	}
	query := `INSERT INTO seat_holds (hold_set_id, show_id, seat_label, status, expires_at, created_at) VALUES `
	args := make([]any, 0, len(holds)*6)
	for i, h := range holds {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, h.HoldSetID, h.ShowID, h.SeatLabel, string(h.Status), h.ExpiresAt.UTC(), h.CreatedAt.UTC())
	}
	_, err := s.q(ctx).ExecContext(ctx, query, args...)
	return err
}

// HoldsBySet retrieves every hold of a hold set.
func (s *MySQLStore) HoldsBySet(ctx context.Context, holdSetID string) ([]model.SeatHold, error) {
	const q = `SELECT id, hold_set_id, show_id, seat_label, status, expires_at, created_at
	           FROM seat_holds WHERE hold_set_id = ?`
	rows, err := s.q(ctx).QueryContext(ctx, q, holdSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var holds []model.SeatHold
	for rows.Next() {
		var h model.SeatHold
		if err := rows.Scan(&h.ID, &h.HoldSetID, &h.ShowID, &h.SeatLabel, &h.Status, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// UnavailableSeats returns the subset of the requested seats currently
// blocked for the show.
func (s *MySQLStore) UnavailableSeats(ctx context.Context, showID uint64, seats []string, now time.Time) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	query := `SELECT DISTINCT seat_label FROM seat_holds
	          WHERE show_id = ? AND seat_label IN (` + placeholders(len(seats)) + `)
	          AND (status = 'CONSUMED' OR (status = 'ACTIVE' AND expires_at > ?))`
	args := make([]any, 0, len(seats)+2)
	args = append(args, showID)
	for _, seat := range seats {
		args = append(args, seat)
	}
	args = append(args, now.UTC())
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		taken = append(taken, label)
	}
	return taken, rows.Err()
}

// SetHoldStatus transitions every hold of the set in status from to
// status to and reports the number of rows changed.
func (s *MySQLStore) SetHoldStatus(ctx context.Context, holdSetID string, from, to model.HoldStatus) (int64, error) {
	const q = `UPDATE seat_holds SET status = ? WHERE hold_set_id = ? AND status = ?`
	res, err := s.q(ctx).ExecContext(ctx, q, string(to), holdSetID, string(from))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpiredHoldSets lists the distinct hold sets still carrying an
// ACTIVE hold past its deadline.
func (s *MySQLStore) ExpiredHoldSets(ctx context.Context, now time.Time) ([]string, error) {
	const q = `SELECT DISTINCT hold_set_id FROM seat_holds
	           WHERE status = 'ACTIVE' AND expires_at <= ?`
	rows, err := s.q(ctx).QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sets []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sets = append(sets, id)
	}
	return sets, rows.Err()
}

// SeatStates maps each blocked seat of the show to HELD or BOOKED.
// Seats without a blocking row are free and not returned.
func (s *MySQLStore) SeatStates(ctx context.Context, showID uint64, now time.Time) (map[string]model.SeatState, error) {
	const q = `SELECT seat_label, status FROM seat_holds
	           WHERE show_id = ? AND (status = 'CONSUMED' OR (status = 'ACTIVE' AND expires_at > ?))`
	rows, err := s.q(ctx).QueryContext(ctx, q, showID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	states := make(map[string]model.SeatState)
	for rows.Next() {
		var label, status string
		if err := rows.Scan(&label, &status); err != nil {
			return nil, err
		}
		if status == string(model.HoldConsumed) {
			states[label] = model.SeatBooked
		} else if states[label] != model.SeatBooked {
			states[label] = model.SeatHeld
		}
	}
	return states, rows.Err()
}
