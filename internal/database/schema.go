package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the full planetarium schema when it does not
// exist yet.  Ordering matters because of foreign keys.  Seat uniqueness
// per session and the minimum-1 bounds live here as real constraints, not
// only as application checks: any code path that writes tickets has to
// satisfy them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('ADMIN','CUSTOMER') NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS planetarium_domes (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		seat_rows    INT NOT NULL,
		seats_in_row INT NOT NULL,
		CONSTRAINT chk_domes_rows CHECK (seat_rows >= 1),
		CONSTRAINT chk_domes_seats CHECK (seats_in_row >= 1)
	)`,
	`CREATE TABLE IF NOT EXISTS show_themes (
		id   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_show_themes_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS astronomy_shows (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS astronomy_show_themes (
		astronomy_show_id BIGINT UNSIGNED NOT NULL,
		show_theme_id     BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_show_theme_pair (astronomy_show_id, show_theme_id),
		CONSTRAINT fk_ast_show FOREIGN KEY (astronomy_show_id)
			REFERENCES astronomy_shows (id) ON DELETE CASCADE,
		CONSTRAINT fk_ast_theme FOREIGN KEY (show_theme_id)
			REFERENCES show_themes (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS show_sessions (
		id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		astronomy_show_id   BIGINT UNSIGNED NOT NULL,
		planetarium_dome_id BIGINT UNSIGNED NOT NULL,
		show_time           DATETIME NOT NULL,
		CONSTRAINT fk_sessions_show FOREIGN KEY (astronomy_show_id)
			REFERENCES astronomy_shows (id) ON DELETE CASCADE,
		CONSTRAINT fk_sessions_dome FOREIGN KEY (planetarium_dome_id)
			REFERENCES planetarium_domes (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		row_no          INT NOT NULL,
		seat_no         INT NOT NULL,
		show_session_id BIGINT UNSIGNED NOT NULL,
		reservation_id  BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_tickets_session_row_seat (show_session_id, row_no, seat_no),
		CONSTRAINT chk_tickets_row CHECK (row_no >= 1),
		CONSTRAINT chk_tickets_seat CHECK (seat_no >= 1),
		CONSTRAINT fk_tickets_session FOREIGN KEY (show_session_id)
			REFERENCES show_sessions (id) ON DELETE CASCADE,
		CONSTRAINT fk_tickets_reservation FOREIGN KEY (reservation_id)
			REFERENCES reservations (id) ON DELETE CASCADE
	)`,
}

// InitSchema applies the schema statements one by one.  All statements are
// idempotent so the function can run on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
