package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

func TestTicketsAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 5x8 dome with 6 tickets issued leaves 34 seats.
	mock.ExpectQuery("seat_rows \\* d.seats_in_row").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(34))

	repo := repository.NewSessionRepo(db)
	available, err := repo.TicketsAvailable(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 34, available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketsAvailable_SessionMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("seat_rows \\* d.seats_in_row").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"available"}))

	repo := repository.NewSessionRepo(db)
	_, err = repo.TicketsAvailable(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithDome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	showTime := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "astronomy_show_id", "show_time", "d_id", "name", "seat_rows", "seats_in_row",
		}).AddRow(3, 2, showTime, 1, "Main dome", 5, 8))

	repo := repository.NewSessionRepo(db)
	info, err := repo.GetWithDome(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), info.ID)
	assert.Equal(t, uint64(2), info.AstronomyShowID)
	assert.Equal(t, showTime, info.ShowTime)
	assert.Equal(t, "Main dome", info.Dome.Name)
	assert.Equal(t, 5, info.Dome.Rows)
	assert.Equal(t, 8, info.Dome.SeatsInRow)
	assert.Equal(t, 40, info.Dome.Capacity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM show_sessions").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := repository.NewSessionRepo(db)
	assert.ErrorIs(t, repo.Delete(context.Background(), 99), repository.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
