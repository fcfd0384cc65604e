// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationSeat is one booked (row, seat) pair inside a session.
type ReservationSeat struct {
	ShowSessionID uint64 `json:"show_session"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
}

// ReservationCreatedEvent is published when a reservation and its tickets
// have been committed.  It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64            `json:"reservation_id"`
	UserID        uint64            `json:"user_id"`
	Seats         []ReservationSeat `json:"seats"`
	CreatedAt     string            `json:"created_at"`
}
