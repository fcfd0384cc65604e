// Package repository holds the data access layer.  This file defines
// sentinel errors shared across repositories so that handlers can map
// failure kinds onto HTTP responses: ErrSeatTaken becomes 409,
// ErrForbidden 403, the various not-found sentinels 404.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.
var ErrForbidden = errors.New("forbidden")

// ErrSeatTaken is returned when a ticket insert violates the unique
// (show_session, row, seat) index, i.e. the seat is already claimed for
// that session.  The enclosing transaction must be rolled back.
var ErrSeatTaken = errors.New("seat already taken for this session")

// ErrDomeNotFound is returned when a dome lookup fails.
var ErrDomeNotFound = errors.New("planetarium dome not found")

// ErrThemeNotFound is returned when a referenced show theme does not exist.
var ErrThemeNotFound = errors.New("show theme not found")

// ErrShowNotFound is returned when an astronomy show lookup fails.
var ErrShowNotFound = errors.New("astronomy show not found")

// ErrSessionNotFound is returned when a show session lookup fails.
var ErrSessionNotFound = errors.New("show session not found")

// ErrReservationNotFound is returned when a reservation lookup fails.
var ErrReservationNotFound = errors.New("reservation not found")

// MySQL error numbers used to translate driver errors into sentinels.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrForeignKeyChild = 1452
)

// isMySQLError reports whether err is a *mysql.MySQLError with the given
// server error number.
func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// isDuplicateKey reports a unique-index violation.
func isDuplicateKey(err error) bool { return isMySQLError(err, mysqlErrDuplicateEntry) }

// isForeignKeyViolation reports an insert referencing a missing parent row.
func isForeignKeyViolation(err error) bool { return isMySQLError(err, mysqlErrForeignKeyChild) }
