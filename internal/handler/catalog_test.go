package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/handler"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

func newMockDB(t *testing.T) (sqlmock.Sqlmock, *repository.DomeRepo, *repository.ThemeRepo, *repository.SessionRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, repository.NewDomeRepo(db), repository.NewThemeRepo(db), repository.NewSessionRepo(db)
}

func jsonRequest(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateDome_GridValidation(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing name", body: `{"rows":5,"seats_in_row":8}`, wantField: "name"},
		{name: "zero rows", body: `{"name":"Main dome","rows":0,"seats_in_row":8}`, wantField: "rows"},
		{name: "negative rows", body: `{"name":"Main dome","rows":-1,"seats_in_row":8}`, wantField: "rows"},
		{name: "zero seats", body: `{"name":"Main dome","rows":5,"seats_in_row":0}`, wantField: "seats_in_row"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, domes, _, _ := newMockDB(t)
			h := handler.NewDomeHandler(domes)

			c, rec := jsonRequest(http.MethodPost, "/v1/planetarium-domes", tc.body)
			require.NoError(t, h.CreateDome(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Field string `json:"field"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantField, resp.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateDome_ReportsCapacity(t *testing.T) {
	mock, domes, _, _ := newMockDB(t)
	h := handler.NewDomeHandler(domes)

	mock.ExpectExec("INSERT INTO planetarium_domes").
		WithArgs("Main dome", 5, 8).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := jsonRequest(http.MethodPost, "/v1/planetarium-domes", `{"name":"Main dome","rows":5,"seats_in_row":8}`)
	require.NoError(t, h.CreateDome(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID       uint64 `json:"id"`
		Capacity int    `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, 40, resp.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTheme_DuplicateName(t *testing.T) {
	mock, _, themes, _ := newMockDB(t)
	h := handler.NewThemeHandler(themes)

	mock.ExpectExec("INSERT INTO show_themes").
		WithArgs("Black Holes").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	c, rec := jsonRequest(http.MethodPost, "/v1/show-themes", `{"name":"Black Holes"}`)
	require.NoError(t, h.CreateTheme(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailability(t *testing.T) {
	mock, _, _, sessions := newMockDB(t)
	h := handler.NewSessionHandler(sessions)

	mock.ExpectQuery("seat_rows \\* d.seats_in_row").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"available"}).AddRow(34))

	c, rec := jsonRequest(http.MethodGet, "/v1/show-sessions/3/availability", "")
	c.SetPath("/v1/show-sessions/:id/availability")
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ShowSession      uint64 `json:"show_session"`
		TicketsAvailable int    `json:"tickets_available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(3), resp.ShowSession)
	assert.Equal(t, 34, resp.TicketsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailability_SessionMissing(t *testing.T) {
	mock, _, _, sessions := newMockDB(t)
	h := handler.NewSessionHandler(sessions)

	mock.ExpectQuery("seat_rows \\* d.seats_in_row").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"available"}))

	c, rec := jsonRequest(http.MethodGet, "/v1/show-sessions/99/availability", "")
	c.SetPath("/v1/show-sessions/:id/availability")
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
