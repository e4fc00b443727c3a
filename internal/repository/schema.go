package repository

import (
	"context"
	"database/sql"
)

// Migrate creates the booking core's tables when they do not exist.
// Row locking on shows plus the status predicates on seat_holds give
// Reserve its atomicity; the unique keys on bookings back up ticket
// and idempotency invariants.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS shows (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			movie_title  VARCHAR(255) NOT NULL,
			cinema_name  VARCHAR(255) NOT NULL,
			screen_name  VARCHAR(255) NOT NULL,
			starts_at    DATETIME NOT NULL,
			price_cents  INT UNSIGNED NOT NULL,
			PRIMARY KEY (id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS seat_holds (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			hold_set_id  CHAR(36) NOT NULL,
			show_id      BIGINT UNSIGNED NOT NULL,
			seat_label   VARCHAR(3) NOT NULL,
			status       ENUM('ACTIVE','RELEASED','CONSUMED') NOT NULL DEFAULT 'ACTIVE',
			expires_at   DATETIME NOT NULL,
			created_at   DATETIME NOT NULL,
			PRIMARY KEY (id),
			KEY idx_holds_set (hold_set_id),
			KEY idx_holds_show_seat (show_id, seat_label, status),
			KEY idx_holds_expiry (status, expires_at),
			CONSTRAINT fk_holds_show FOREIGN KEY (show_id) REFERENCES shows (id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS payments (
			id            CHAR(36) NOT NULL,
			user_id       BIGINT UNSIGNED NOT NULL,
			show_id       BIGINT UNSIGNED NOT NULL,
			seats         VARCHAR(64) NOT NULL,
			amount_cents  INT UNSIGNED NOT NULL,
			order_id      VARCHAR(64) NOT NULL,
			client_secret VARCHAR(128) NOT NULL,
			hold_set_id   CHAR(36) NOT NULL,
			status        ENUM('CREATED','VERIFIED','FAILED') NOT NULL DEFAULT 'CREATED',
			created_at    DATETIME NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_payments_hold_set (hold_set_id),
			KEY idx_payments_user (user_id, created_at),
			CONSTRAINT fk_payments_show FOREIGN KEY (show_id) REFERENCES shows (id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id           CHAR(36) NOT NULL,
			payment_id   CHAR(36) NOT NULL,
			user_id      BIGINT UNSIGNED NOT NULL,
			show_id      BIGINT UNSIGNED NOT NULL,
			seats        VARCHAR(64) NOT NULL,
			total_cents  INT UNSIGNED NOT NULL,
			ticket_code  VARCHAR(16) NOT NULL,
			status       ENUM('CONFIRMED','CANCELLED') NOT NULL DEFAULT 'CONFIRMED',
			created_at   DATETIME NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_bookings_payment (payment_id),
			UNIQUE KEY uq_bookings_ticket (ticket_code),
			KEY idx_bookings_user (user_id, created_at),
			CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id),
			CONSTRAINT fk_bookings_payment FOREIGN KEY (payment_id) REFERENCES payments (id)
		) ENGINE=InnoDB`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
