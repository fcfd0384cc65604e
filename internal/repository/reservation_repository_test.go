package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

func sessionDomeRows(domeID uint64, name string, rows, seats int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "seat_rows", "seats_in_row"}).
		AddRow(domeID, name, rows, seats)
}

func TestReservationCreateTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	repo := repository.NewReservationRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	rec := repository.ReservationRecord{UserID: 7}
	require.NoError(t, repo.CreateTx(context.Background(), tx, &rec))
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint64(42), rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketsTx_BulkInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM show_sessions s").
		WithArgs(uint64(3)).
		WillReturnRows(sessionDomeRows(1, "Main dome", 5, 8))
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(2, 4, uint64(3), uint64(42), 2, 5, uint64(3), uint64(42)).
		WillReturnResult(sqlmock.NewResult(100, 2))
	mock.ExpectCommit()

	repo := repository.NewReservationRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	tickets := []model.Ticket{
		{Row: 2, Seat: 4, ShowSessionID: 3},
		{Row: 2, Seat: 5, ShowSessionID: 3},
	}
	created, err := repo.CreateTicketsTx(context.Background(), tx, 42, tickets)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, created, 2)
	assert.Equal(t, uint64(100), created[0].ID)
	assert.Equal(t, uint64(101), created[1].ID)
	assert.Equal(t, uint64(42), created[0].ReservationID)
	assert.Equal(t, uint64(42), created[1].ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketsTx_DuplicateSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM show_sessions s").
		WithArgs(uint64(3)).
		WillReturnRows(sessionDomeRows(1, "Main dome", 5, 8))
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	repo := repository.NewReservationRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.CreateTicketsTx(context.Background(), tx, 42, []model.Ticket{
		{Row: 2, Seat: 4, ShowSessionID: 3},
	})
	assert.ErrorIs(t, err, repository.ErrSeatTaken)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketsTx_SeatOutOfGrid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The dome lookup runs, the insert never does.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM show_sessions s").
		WithArgs(uint64(3)).
		WillReturnRows(sessionDomeRows(1, "Main dome", 5, 8))
	mock.ExpectRollback()

	repo := repository.NewReservationRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.CreateTicketsTx(context.Background(), tx, 42, []model.Ticket{
		{Row: 6, Seat: 1, ShowSessionID: 3},
	})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "row", ve.Field)
	assert.Equal(t, "row must be within (1, 5)", ve.Message)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketsTx_SessionMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM show_sessions s").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "seat_rows", "seats_in_row"}))
	mock.ExpectRollback()

	repo := repository.NewReservationRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.CreateTicketsTx(context.Background(), tx, 42, []model.Ticket{
		{Row: 1, Seat: 1, ShowSessionID: 99},
	})
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDForUser_OtherUsersReservationHidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, created_at FROM reservations").
		WithArgs(uint64(42), uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	repo := repository.NewReservationRepo(db)
	_, err = repo.GetByIDForUser(context.Background(), 42, 8)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForUser_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(uint64(42), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := repository.NewReservationRepo(db)
	err = repo.DeleteForUser(context.Background(), 42, 8)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_TicketsGroupedPerReservation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	showTime := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, created_at FROM reservations").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(11, t1).
			AddRow(10, t2))
	mock.ExpectQuery("FROM tickets t").
		WithArgs(uint64(11), uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"reservation_id", "id", "row_no", "seat_no", "show_session_id", "title", "show_time",
		}).
			AddRow(11, 100, 2, 4, 3, "Cosmic Journey", showTime).
			AddRow(11, 101, 2, 5, 3, "Cosmic Journey", showTime))

	repo := repository.NewReservationRepo(db)
	list, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, uint64(11), list[0].ID)
	require.Len(t, list[0].Tickets, 2)
	assert.Equal(t, "Cosmic Journey", list[0].Tickets[0].AstronomyShow)
	assert.Empty(t, list[1].Tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}
