package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/handler"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

func newReservationHandler(t *testing.T) (*handler.ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return handler.NewReservationHandler(
		repository.NewReservationRepo(db),
		repository.NewSessionRepo(db),
		nil, // no broker in tests
	), mock
}

func postReservation(body string, userID interface{}) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c, rec
}

func domeLookupRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "seat_rows", "seats_in_row"}).
		AddRow(1, "Main dome", 5, 8)
}

func sessionLookupRows() *sqlmock.Rows {
	showTime := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "astronomy_show_id", "show_time", "d_id", "name", "seat_rows", "seats_in_row",
	}).AddRow(3, 2, showTime, 1, "Main dome", 5, 8)
}

func TestCreateReservation_Success(t *testing.T) {
	h, mock := newReservationHandler(t)

	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(sessionLookupRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(domeLookupRows())
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(2, 4, uint64(3), uint64(42), 2, 5, uint64(3), uint64(42)).
		WillReturnResult(sqlmock.NewResult(100, 2))
	mock.ExpectCommit()

	body := `{"tickets":[{"row":2,"seat":4,"show_session":3},{"row":2,"seat":5,"show_session":3}]}`
	c, rec := postReservation(body, uint64(7))

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      uint64 `json:"id"`
		Tickets []struct {
			ID            uint64 `json:"id"`
			Row           int    `json:"row"`
			Seat          int    `json:"seat"`
			ShowSessionID uint64 `json:"show_session"`
		} `json:"tickets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.ID)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, uint64(100), resp.Tickets[0].ID)
	assert.Equal(t, uint64(101), resp.Tickets[1].ID)
	assert.Equal(t, uint64(3), resp.Tickets[0].ShowSessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_Unauthenticated(t *testing.T) {
	h, mock := newReservationHandler(t)

	c, rec := postReservation(`{"tickets":[{"row":1,"seat":1,"show_session":3}]}`, nil)

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_EmptyTickets(t *testing.T) {
	h, mock := newReservationHandler(t)

	c, rec := postReservation(`{"tickets":[]}`, uint64(7))

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tickets", resp.Field)
	// Nothing touches the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_SeatOutOfGrid(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(sessionLookupRows())

	c, rec := postReservation(`{"tickets":[{"row":8,"seat":1,"show_session":3}]}`, uint64(7))

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "row", resp.Field)
	assert.Equal(t, "row must be within (1, 5)", resp.Message)
	// No transaction was opened, so nothing to roll back.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_SessionMissing(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "astronomy_show_id", "show_time", "d_id", "name", "seat_rows", "seats_in_row",
		}))

	c, rec := postReservation(`{"tickets":[{"row":1,"seat":1,"show_session":99}]}`, uint64(7))

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation_SeatTakenRollsBack(t *testing.T) {
	h, mock := newReservationHandler(t)

	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(sessionLookupRows())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery("JOIN planetarium_domes d").
		WithArgs(uint64(3)).
		WillReturnRows(domeLookupRows())
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	c, rec := postReservation(`{"tickets":[{"row":2,"seat":4,"show_session":3}]}`, uint64(7))

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	// The rollback expectation confirms the reservation row did not survive.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservation_NotOwned(t *testing.T) {
	h, mock := newReservationHandler(t)

	mock.ExpectQuery("SELECT id, created_at FROM reservations").
		WithArgs(uint64(42), uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations/42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations/:id")
	c.SetParamNames("id")
	c.SetParamValues("42")
	c.Set("user_id", uint64(8))

	require.NoError(t, h.GetReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
