package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/kostomeister/planetarium-api-service/internal/model"
)

// SessionRecord mirrors the show_sessions table.
type SessionRecord struct {
	ID              uint64    `json:"id"`
	AstronomyShowID uint64    `json:"astronomy_show"`
	DomeID          uint64    `json:"planetarium_dome"`
	ShowTime        time.Time `json:"show_time"`
}

// SessionInfo is a session resolved together with its dome grid.  The
// reservation flow uses it to validate requested seats before and inside
// the transaction.
type SessionInfo struct {
	ID              uint64
	AstronomyShowID uint64
	ShowTime        time.Time
	Dome            model.Dome
}

// SessionListRow is the list projection of a session: related names are
// flattened and the remaining seat count is derived at read time as
// capacity minus issued tickets.  It is never stored.
type SessionListRow struct {
	ID               uint64    `json:"id"`
	AstronomyShow    string    `json:"astronomy_show"`
	PlanetariumDome  string    `json:"planetarium_dome"`
	ShowTime         time.Time `json:"show_time"`
	TicketsAvailable int       `json:"tickets_available"`
}

// TakenPlace is one claimed (row, seat) pair within a session.
type TakenPlace struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// SessionDetail is the detail projection: the full show and dome objects
// plus every place already taken, ordered by row then seat.
type SessionDetail struct {
	ID            uint64       `json:"id"`
	AstronomyShow ShowDetail   `json:"astronomy_show"`
	Dome          model.Dome   `json:"planetarium_dome"`
	ShowTime      time.Time    `json:"show_time"`
	TakenPlaces   []TakenPlace `json:"taken_places"`
}

// SessionFilter narrows a session listing by calendar date, show or dome.
type SessionFilter struct {
	Date   *time.Time
	ShowID uint64
	DomeID uint64
}

// SessionRepo provides persistence for show sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// Create inserts a session.  Missing show or dome references surface as
// ErrShowNotFound / ErrDomeNotFound after a foreign key violation; the
// FK error does not say which parent failed, so the dome is probed first.
func (r *SessionRepo) Create(ctx context.Context, s *SessionRecord) error {
	const q = `INSERT INTO show_sessions (astronomy_show_id, planetarium_dome_id, show_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.AstronomyShowID, s.DomeID, s.ShowTime.UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return r.missingParent(ctx, s.DomeID)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update rewrites a session's fields.  Returns ErrSessionNotFound when
// the session does not exist.
func (r *SessionRepo) Update(ctx context.Context, s *SessionRecord) error {
	const q = `UPDATE show_sessions
	           SET astronomy_show_id = ?, planetarium_dome_id = ?, show_time = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.AstronomyShowID, s.DomeID, s.ShowTime.UTC(), s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return r.missingParent(ctx, s.DomeID)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT id FROM show_sessions WHERE id = ?`, s.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
	}
	return nil
}

// missingParent decides which FK target was absent on insert/update.
func (r *SessionRepo) missingParent(ctx context.Context, domeID uint64) error {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM planetarium_domes WHERE id = ?`, domeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDomeNotFound
	}
	return ErrShowNotFound
}

// Delete removes a session; its tickets are cascade deleted.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM show_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetWithDome resolves a session together with its dome grid, or
// ErrSessionNotFound.
func (r *SessionRepo) GetWithDome(ctx context.Context, id uint64) (*SessionInfo, error) {
	const q = `SELECT s.id, s.astronomy_show_id, s.show_time,
	                  d.id, d.name, d.seat_rows, d.seats_in_row
	           FROM show_sessions s
	           JOIN planetarium_domes d ON d.id = s.planetarium_dome_id
	           WHERE s.id = ?`
	var info SessionInfo
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&info.ID, &info.AstronomyShowID, &info.ShowTime,
		&info.Dome.ID, &info.Dome.Name, &info.Dome.Rows, &info.Dome.SeatsInRow,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &info, nil
}

// TicketsAvailable returns the remaining seat count for a session:
// dome capacity minus already issued tickets, recomputed on every call.
func (r *SessionRepo) TicketsAvailable(ctx context.Context, id uint64) (int, error) {
	const q = `SELECT d.seat_rows * d.seats_in_row -
	                  (SELECT COUNT(*) FROM tickets t WHERE t.show_session_id = s.id)
	           FROM show_sessions s
	           JOIN planetarium_domes d ON d.id = s.planetarium_dome_id
	           WHERE s.id = ?`
	var available int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	return available, nil
}

// List returns sessions matching the filter ordered by show time
// descending, each with its derived remaining seat count.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]SessionListRow, error) {
	where := []string{}
	args := []any{}

	if f.Date != nil {
		where = append(where, "DATE(s.show_time) = ?")
		args = append(args, f.Date.UTC().Format("2006-01-02"))
	}
	if f.ShowID != 0 {
		where = append(where, "s.astronomy_show_id = ?")
		args = append(args, f.ShowID)
	}
	if f.DomeID != 0 {
		where = append(where, "s.planetarium_dome_id = ?")
		args = append(args, f.DomeID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	query := `SELECT s.id, a.title, d.name, s.show_time,
	                 d.seat_rows * d.seats_in_row - COUNT(t.id)
	          FROM show_sessions s
	          JOIN astronomy_shows a ON a.id = s.astronomy_show_id
	          JOIN planetarium_domes d ON d.id = s.planetarium_dome_id
	          LEFT JOIN tickets t ON t.show_session_id = s.id
	          WHERE ` + cond + `
	          GROUP BY s.id, a.title, d.name, s.show_time, d.seat_rows, d.seats_in_row
	          ORDER BY s.show_time DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionListRow, 0)
	for rows.Next() {
		var row SessionListRow
		if err := rows.Scan(&row.ID, &row.AstronomyShow, &row.PlanetariumDome,
			&row.ShowTime, &row.TicketsAvailable); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetail returns a session with its full show, dome and the list of
// already taken places ordered by row then seat.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (*SessionDetail, error) {
	const q = `SELECT s.id, s.show_time,
	                  a.id, a.title, a.description,
	                  d.id, d.name, d.seat_rows, d.seats_in_row
	           FROM show_sessions s
	           JOIN astronomy_shows a ON a.id = s.astronomy_show_id
	           JOIN planetarium_domes d ON d.id = s.planetarium_dome_id
	           WHERE s.id = ?`
	var det SessionDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.ShowTime,
		&det.AstronomyShow.ID, &det.AstronomyShow.Title, &det.AstronomyShow.Description,
		&det.Dome.ID, &det.Dome.Name, &det.Dome.Rows, &det.Dome.SeatsInRow,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	const themeQ = `SELECT t.id, t.name
	                FROM astronomy_show_themes st
	                JOIN show_themes t ON t.id = st.show_theme_id
	                WHERE st.astronomy_show_id = ?
	                ORDER BY t.name`
	trows, err := r.db.QueryContext(ctx, themeQ, det.AstronomyShow.ID)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	det.AstronomyShow.Themes = make([]Theme, 0)
	for trows.Next() {
		var t Theme
		if err := trows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		det.AstronomyShow.Themes = append(det.AstronomyShow.Themes, t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	const placesQ = `SELECT row_no, seat_no FROM tickets
	                 WHERE show_session_id = ?
	                 ORDER BY row_no, seat_no`
	prows, err := r.db.QueryContext(ctx, placesQ, id)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	det.TakenPlaces = make([]TakenPlace, 0)
	for prows.Next() {
		var p TakenPlace
		if err := prows.Scan(&p.Row, &p.Seat); err != nil {
			return nil, err
		}
		det.TakenPlaces = append(det.TakenPlaces, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}
