package model

// Dome describes a planetarium dome with a fixed rectangular seat grid.
// Rows is the number of seating rows and SeatsInRow the number of seats
// in each row.  Both must be at least 1; the database enforces the same
// bound with CHECK constraints.  This struct corresponds to a row in the
// `planetarium_domes` table.
type Dome struct {
	ID         uint64 `json:"id"`           // planetarium_domes.id
	Name       string `json:"name"`         // planetarium_domes.name
	Rows       int    `json:"rows"`         // planetarium_domes.seat_rows
	SeatsInRow int    `json:"seats_in_row"` // planetarium_domes.seats_in_row
}

// Capacity returns the total number of seats in the dome.  It is always
// derived from the grid and never stored independently.
func (d Dome) Capacity() int {
	return d.Rows * d.SeatsInRow
}
