package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id from the echo context.
// The JWT middleware stores it under "user_id"; depending on how the
// claim was decoded it may arrive as several numeric types or a string.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// validationJSON renders a field validation failure in the shape clients
// rely on: {"field": ..., "message": ...} with HTTP 400.
func validationJSON(c echo.Context, ve *model.ValidationError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"field":   ve.Field,
		"message": ve.Message,
	})
}
