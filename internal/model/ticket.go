package model

import "fmt"

// Ticket is a claim on one (row, seat) pair for one show session.  Tickets
// are owned by exactly one reservation and are only created as part of a
// reservation transaction.  The (show_session_id, row, seat) triple is
// unique per session, enforced by a UNIQUE index on the tickets table.
type Ticket struct {
	ID            uint64 `json:"id"`           // tickets.id
	Row           int    `json:"row"`          // tickets.row_no
	Seat          int    `json:"seat"`         // tickets.seat_no
	ShowSessionID uint64 `json:"show_session"` // tickets.show_session_id
	ReservationID uint64 `json:"-"`            // tickets.reservation_id
}

// ValidateSeat checks that a (row, seat) pair lies inside the dome's grid.
// It returns nil when 1 <= row <= dome.Rows and 1 <= seat <= dome.SeatsInRow,
// and otherwise a *ValidationError naming the first violated dimension and
// its valid range.  The function is pure; the same check runs both on the
// incoming request and again at the storage boundary inside the reservation
// transaction, so any write path has to pass it.
func ValidateSeat(row, seat int, dome Dome) error {
	checks := []struct {
		value int
		field string
		max   int
	}{
		{row, "row", dome.Rows},
		{seat, "seat", dome.SeatsInRow},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return &ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("%s must be within (1, %d)", c.field, c.max),
			}
		}
	}
	return nil
}
