package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/kostomeister/planetarium-api-service/internal/model"
)

// ReservationRepo provides persistence for reservations and their tickets.
// A reservation exclusively owns its tickets: they are created together in
// one transaction and cascade deleted with it.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ReservationRecord mirrors the reservations table.
type ReservationRecord struct {
	ID        uint64
	UserID    uint64
	CreatedAt time.Time
}

// CreateTx inserts a reservation within an existing transaction and reads
// back the generated ID and creation timestamp.  The caller commits or
// rolls back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *ReservationRecord) error {
	const q = `INSERT INTO reservations (user_id) VALUES (?)`
	res, err := tx.ExecContext(ctx, q, rec.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)

	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt)
}

// CreateTicketsTx inserts every ticket of a reservation inside the given
// transaction.  Before inserting, each requested seat is validated once
// more against its session's dome grid, so the bounds invariant holds on
// every write path and not only in the request-handling layer.  A missing
// session surfaces as ErrSessionNotFound, an out-of-grid seat as
// *model.ValidationError, a duplicate (session, row, seat) as ErrSeatTaken.
// Any error leaves the transaction fit only for rollback.
func (r *ReservationRepo) CreateTicketsTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tickets []model.Ticket) ([]model.Ticket, error) {
	if len(tickets) == 0 {
		return nil, nil
	}

	domes := make(map[uint64]model.Dome)
	for _, t := range tickets {
		dome, ok := domes[t.ShowSessionID]
		if !ok {
			const q = `SELECT d.id, d.name, d.seat_rows, d.seats_in_row
			           FROM show_sessions s
			           JOIN planetarium_domes d ON d.id = s.planetarium_dome_id
			           WHERE s.id = ?`
			err := tx.QueryRowContext(ctx, q, t.ShowSessionID).Scan(
				&dome.ID, &dome.Name, &dome.Rows, &dome.SeatsInRow)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, ErrSessionNotFound
				}
				return nil, err
			}
			domes[t.ShowSessionID] = dome
		}
		if err := model.ValidateSeat(t.Row, t.Seat, dome); err != nil {
			return nil, err
		}
	}

	query := `INSERT INTO tickets (row_no, seat_no, show_session_id, reservation_id) VALUES `
	args := make([]interface{}, 0, len(tickets)*4)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, t.Row, t.Seat, t.ShowSessionID, reservationID)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSeatTaken
		}
		return nil, err
	}

	// MySQL returns the first auto id of a multi-row insert; the rest are
	// consecutive within the statement.
	firstID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		t.ID = uint64(firstID) + uint64(i)
		t.ReservationID = reservationID
		out[i] = t
	}
	return out, nil
}

// TicketDetail is a ticket row joined with its session for display.
type TicketDetail struct {
	ID            uint64    `json:"id"`
	Row           int       `json:"row"`
	Seat          int       `json:"seat"`
	ShowSessionID uint64    `json:"show_session"`
	AstronomyShow string    `json:"astronomy_show"`
	ShowTime      time.Time `json:"show_time"`
}

// ReservationDetail is a reservation with its tickets, as returned to the
// owning user.
type ReservationDetail struct {
	ID        uint64         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []TicketDetail `json:"tickets"`
}

// ListByUser returns the user's reservations ordered most recent first,
// each with its tickets ordered by row then seat.  Tickets are fetched in
// a single follow-up query.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT id, created_at FROM reservations
	           WHERE user_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Tickets = []TicketDetail{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	ticketQ := `SELECT t.reservation_id, t.id, t.row_no, t.seat_no, t.show_session_id,
	                   a.title, s.show_time
	            FROM tickets t
	            JOIN show_sessions s ON s.id = t.show_session_id
	            JOIN astronomy_shows a ON a.id = s.astronomy_show_id
	            WHERE t.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	            ORDER BY t.reservation_id, t.row_no, t.seat_no`
	trows, err := r.db.QueryContext(ctx, ticketQ, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var resID uint64
		var t TicketDetail
		if err := trows.Scan(&resID, &t.ID, &t.Row, &t.Seat, &t.ShowSessionID,
			&t.AstronomyShow, &t.ShowTime); err != nil {
			return nil, err
		}
		if idx, ok := index[resID]; ok {
			details[idx].Tickets = append(details[idx].Tickets, t)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByIDForUser returns one reservation restricted to its owner.  A
// reservation that exists but belongs to another user is reported as
// ErrReservationNotFound, the same as a missing one, so ownership is not
// leaked.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	const q = `SELECT id, created_at FROM reservations WHERE id = ? AND user_id = ?`
	var det ReservationDetail
	err := r.db.QueryRowContext(ctx, q, reservationID, userID).Scan(&det.ID, &det.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	const ticketQ = `SELECT t.id, t.row_no, t.seat_no, t.show_session_id, a.title, s.show_time
	                 FROM tickets t
	                 JOIN show_sessions s ON s.id = t.show_session_id
	                 JOIN astronomy_shows a ON a.id = s.astronomy_show_id
	                 WHERE t.reservation_id = ?
	                 ORDER BY t.row_no, t.seat_no`
	rows, err := r.db.QueryContext(ctx, ticketQ, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Tickets = []TicketDetail{}
	for rows.Next() {
		var t TicketDetail
		if err := rows.Scan(&t.ID, &t.Row, &t.Seat, &t.ShowSessionID,
			&t.AstronomyShow, &t.ShowTime); err != nil {
			return nil, err
		}
		det.Tickets = append(det.Tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// DeleteForUser removes a reservation owned by the user; its tickets go
// with it through the FK cascade, freeing the seats.  Returns
// ErrReservationNotFound when nothing matched.
func (r *ReservationRepo) DeleteForUser(ctx context.Context, reservationID, userID uint64) error {
	const q = `DELETE FROM reservations WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, reservationID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
