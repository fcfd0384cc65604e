package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Show mirrors the astronomy_shows table.
type Show struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ShowListRow is a list projection of an astronomy show: themes are
// flattened to their names, matching the summary view of the API.
type ShowListRow struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Themes      []string `json:"show_themes"`
}

// ShowDetail is the detail projection: themes come back as full objects.
type ShowDetail struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Themes      []Theme `json:"show_themes"`
}

// ShowFilter narrows a show listing.  Title matches as a case-insensitive
// substring; ThemeIDs keeps shows associated with any of the given themes.
type ShowFilter struct {
	Title    string
	ThemeIDs []uint64
}

// ShowRepo provides persistence for astronomy shows and their theme set.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo bound to the given database.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ShowRepo) DB() *sql.DB { return r.db }

// Create inserts a show together with its theme associations in a single
// transaction.  A theme ID that does not exist surfaces as
// ErrThemeNotFound and nothing is persisted.
func (r *ShowRepo) Create(ctx context.Context, s *Show, themeIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO astronomy_shows (title, description) VALUES (?, ?)`
	res, err := tx.ExecContext(ctx, q, s.Title, s.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	if err := insertShowThemesTx(ctx, tx, s.ID, themeIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites a show's fields and replaces its theme set atomically.
// Returns ErrShowNotFound when the show does not exist.
func (r *ShowRepo) Update(ctx context.Context, s *Show, themeIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE astronomy_shows SET title = ?, description = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, s.Title, s.Description, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and an unchanged one,
		// so confirm existence before reporting not found.
		var exists uint64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM astronomy_shows WHERE id = ?`, s.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM astronomy_show_themes WHERE astronomy_show_id = ?`, s.ID); err != nil {
		return err
	}
	if err := insertShowThemesTx(ctx, tx, s.ID, themeIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertShowThemesTx links a show to each theme ID.  Membership is a set,
// so duplicate IDs in the input are dropped before insertion.
func insertShowThemesTx(ctx context.Context, tx *sql.Tx, showID uint64, themeIDs []uint64) error {
	if len(themeIDs) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(themeIDs))
	query := `INSERT INTO astronomy_show_themes (astronomy_show_id, show_theme_id) VALUES `
	args := make([]interface{}, 0, len(themeIDs)*2)
	for _, tid := range themeIDs {
		if _, ok := seen[tid]; ok {
			continue
		}
		seen[tid] = struct{}{}
		if len(args) > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, showID, tid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return ErrThemeNotFound
		}
		return err
	}
	return nil
}

// Delete removes a show; sessions referencing it are cascade deleted.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM astronomy_shows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowNotFound
	}
	return nil
}

// GetByID returns a show with its full theme objects or ErrShowNotFound.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*ShowDetail, error) {
	const q = `SELECT id, title, description FROM astronomy_shows WHERE id = ?`
	var det ShowDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(&det.ID, &det.Title, &det.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	const themeQ = `SELECT t.id, t.name
	                FROM astronomy_show_themes st
	                JOIN show_themes t ON t.id = st.show_theme_id
	                WHERE st.astronomy_show_id = ?
	                ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, themeQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Themes = make([]Theme, 0)
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		det.Themes = append(det.Themes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// List returns shows matching the filter, ordered by title, with theme
// names populated in a second query to avoid row multiplication.
func (r *ShowRepo) List(ctx context.Context, f ShowFilter) ([]ShowListRow, error) {
	where := []string{}
	args := []any{}

	if f.Title != "" {
		where = append(where, "LOWER(s.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Title)+"%")
	}
	if len(f.ThemeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.ThemeIDs)), ",")
		where = append(where, `s.id IN (
			SELECT astronomy_show_id FROM astronomy_show_themes
			WHERE show_theme_id IN (`+placeholders+`))`)
		for _, tid := range f.ThemeIDs {
			args = append(args, tid)
		}
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	query := `SELECT s.id, s.title, s.description
	          FROM astronomy_shows s
	          WHERE ` + cond + `
	          ORDER BY s.title`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ShowListRow, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var row ShowListRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Description); err != nil {
			return nil, err
		}
		row.Themes = []string{}
		index[row.ID] = len(out)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]interface{}, 0, len(out))
	placeholders := make([]string, 0, len(out))
	for _, row := range out {
		ids = append(ids, row.ID)
		placeholders = append(placeholders, "?")
	}
	themeQ := `SELECT st.astronomy_show_id, t.name
	           FROM astronomy_show_themes st
	           JOIN show_themes t ON t.id = st.show_theme_id
	           WHERE st.astronomy_show_id IN (` + strings.Join(placeholders, ",") + `)
	           ORDER BY st.astronomy_show_id, t.name`
	trows, err := r.db.QueryContext(ctx, themeQ, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var showID uint64
		var name string
		if err := trows.Scan(&showID, &name); err != nil {
			return nil, err
		}
		if idx, ok := index[showID]; ok {
			out[idx].Themes = append(out[idx].Themes, name)
		}
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
