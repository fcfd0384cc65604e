package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostomeister/planetarium-api-service/internal/middleware"
	"github.com/kostomeister/planetarium-api-service/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var inner echo.Context
	h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
		inner = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, inner
}

func TestJWTAuth_ValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec, inner := runProtected(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, inner)
	// Numeric JWT claims decode as float64.
	assert.EqualValues(t, 7, inner.Get("user_id"))
	assert.Equal(t, "CUSTOMER", inner.Get("role"))
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec, inner := runProtected(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, inner)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("other-secret", 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec, inner := runProtected(t, "Bearer "+access.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, inner)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     interface{}
		allowed  []string
		wantCode int
	}{
		{name: "admin on admin route", role: "ADMIN", allowed: []string{"ADMIN"}, wantCode: http.StatusOK},
		{name: "customer on admin route", role: "CUSTOMER", allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
		{name: "customer on shared route", role: "CUSTOMER", allowed: []string{"ADMIN", "CUSTOMER"}, wantCode: http.StatusOK},
		{name: "missing role", role: nil, allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
		{name: "non-string role", role: 42, allowed: []string{"ADMIN"}, wantCode: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/v1/planetarium-domes", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}

			h := middleware.RequireRole(tc.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
