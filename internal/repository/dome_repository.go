package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kostomeister/planetarium-api-service/internal/model"
)

// DomeRepo provides persistence for planetarium domes.  Domes carry the
// physical seat grid; capacity is always derived from it via
// model.Dome.Capacity and never stored.
type DomeRepo struct {
	db *sql.DB
}

// NewDomeRepo constructs a DomeRepo bound to the given database.
func NewDomeRepo(db *sql.DB) *DomeRepo { return &DomeRepo{db: db} }

// Create inserts a new dome and populates the generated ID.  The caller
// is expected to have validated Rows and SeatsInRow >= 1; the CHECK
// constraints reject anything that slips through.
func (r *DomeRepo) Create(ctx context.Context, d *model.Dome) error {
	const q = `INSERT INTO planetarium_domes (name, seat_rows, seats_in_row) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.Name, d.Rows, d.SeatsInRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID returns a dome by its ID or ErrDomeNotFound.
func (r *DomeRepo) GetByID(ctx context.Context, id uint64) (*model.Dome, error) {
	const q = `SELECT id, name, seat_rows, seats_in_row FROM planetarium_domes WHERE id = ?`
	var d model.Dome
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Name, &d.Rows, &d.SeatsInRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDomeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns all domes ordered by ID.
func (r *DomeRepo) List(ctx context.Context) ([]model.Dome, error) {
	const q = `SELECT id, name, seat_rows, seats_in_row FROM planetarium_domes ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Dome, 0)
	for rows.Next() {
		var d model.Dome
		if err := rows.Scan(&d.ID, &d.Name, &d.Rows, &d.SeatsInRow); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
