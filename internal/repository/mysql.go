// Package repository provides the persistence implementations of the
// booking core's Store contract: a MySQL store used in production and
// an in-memory store used for tests and single-process deployments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// MySQLStore implements booking.Store on a *sql.DB. Transactions are
// carried through the context so nested WithTx calls join the
// enclosing transaction, and every query helper routes through q() to
// pick the transaction up when present.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a store bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying handle for lifecycle management.
func (s *MySQLStore) DB() *sql.DB { return s.db }

type txKey struct{}

// querier is the subset of sql.DB/sql.Tx the store needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction carried by ctx, or the plain DB handle.
func (s *MySQLStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx runs fn inside a database transaction. A nested call joins
// the transaction already carried by the context. The transaction is
// rolled back when fn returns an error.
func (s *MySQLStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LockShow takes a row lock on the show, serializing the enclosing
// transaction against every other writer of the same show. Reserve
// relies on this to make its check-and-insert atomic.
func (s *MySQLStore) LockShow(ctx context.Context, showID uint64) error {
	var id uint64
	err := s.q(ctx).QueryRowContext(ctx, `SELECT id FROM shows WHERE id = ? FOR UPDATE`, showID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNoRow
	}
	return err
}

// GetShow retrieves a show by id.
func (s *MySQLStore) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_title, cinema_name, screen_name, starts_at, price_cents
	           FROM shows WHERE id = ?`
	var sh model.Show
	err := s.q(ctx).QueryRowContext(ctx, q, id).Scan(
		&sh.ID, &sh.MovieTitle, &sh.CinemaName, &sh.ScreenName, &sh.StartsAt, &sh.PriceCents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNoRow
		}
		return nil, err
	}
	return &sh, nil
}

// CreateShow inserts a show. The booking core treats shows as
// read-only catalog data; this exists for seeding and tests.
func (s *MySQLStore) CreateShow(ctx context.Context, sh *model.Show) error {
	const q = `INSERT INTO shows (movie_title, cinema_name, screen_name, starts_at, price_cents)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := s.q(ctx).ExecContext(ctx, q, sh.MovieTitle, sh.CinemaName, sh.ScreenName, sh.StartsAt.UTC(), sh.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sh.ID = uint64(id)
	return nil
}

// placeholders builds "?, ?, ?" for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
