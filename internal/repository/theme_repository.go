package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Theme mirrors the show_themes table.  Theme names are unique.
type Theme struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ErrThemeExists is returned when a theme with the same name already exists.
var ErrThemeExists = errors.New("show theme already exists")

// ThemeRepo provides persistence for show themes.
type ThemeRepo struct {
	db *sql.DB
}

// NewThemeRepo constructs a ThemeRepo bound to the given database.
func NewThemeRepo(db *sql.DB) *ThemeRepo { return &ThemeRepo{db: db} }

// Create inserts a new theme and populates the generated ID.  Duplicate
// names are reported as ErrThemeExists.
func (r *ThemeRepo) Create(ctx context.Context, t *Theme) error {
	const q = `INSERT INTO show_themes (name) VALUES (?)`
	res, err := r.db.ExecContext(ctx, q, t.Name)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrThemeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// List returns all themes ordered by name.
func (r *ThemeRepo) List(ctx context.Context) ([]Theme, error) {
	const q = `SELECT id, name FROM show_themes ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Theme, 0)
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
