package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

// SessionHandler exposes show session endpoints.  Mutations are limited
// to admins by middleware; listing, detail and availability are open to
// any authenticated user.
type SessionHandler struct {
	Sessions *repository.SessionRepo
}

func NewSessionHandler(sessions *repository.SessionRepo) *SessionHandler {
	if sessions == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions}
}

type sessionReq struct {
	AstronomyShowID uint64    `json:"astronomy_show"`
	DomeID          uint64    `json:"planetarium_dome"`
	ShowTime        time.Time `json:"show_time"`
}

// missingField names the first absent required field, or "".
func (r sessionReq) missingField() string {
	switch {
	case r.AstronomyShowID == 0:
		return "astronomy_show"
	case r.DomeID == 0:
		return "planetarium_dome"
	case r.ShowTime.IsZero():
		return "show_time"
	}
	return ""
}

// CreateSession handles POST /v1/show-sessions.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if f := req.missingField(); f != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": f + " is required"})
	}

	rec := repository.SessionRecord{
		AstronomyShowID: req.AstronomyShowID,
		DomeID:          req.DomeID,
		ShowTime:        req.ShowTime,
	}
	if err := h.Sessions.Create(c.Request().Context(), &rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrDomeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "planetarium dome not found"})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "astronomy show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusCreated, rec)
}

// UpdateSession handles PUT /v1/show-sessions/:id.
func (h *SessionHandler) UpdateSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if f := req.missingField(); f != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": f + " is required"})
	}

	rec := repository.SessionRecord{
		ID:              id,
		AstronomyShowID: req.AstronomyShowID,
		DomeID:          req.DomeID,
		ShowTime:        req.ShowTime,
	}
	if err := h.Sessions.Update(c.Request().Context(), &rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
		case errors.Is(err, repository.ErrDomeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "planetarium dome not found"})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "astronomy show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update session failed"})
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteSession handles DELETE /v1/show-sessions/:id.
func (h *SessionHandler) DeleteSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete session failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSessions handles GET /v1/show-sessions.  Supports ?date=2026-09-01,
// ?astronomy_show= and ?planetarium_dome= filters.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	var filter repository.SessionFilter
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date filter, expected YYYY-MM-DD"})
		}
		filter.Date = &d
	}
	if raw := strings.TrimSpace(c.QueryParam("astronomy_show")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid astronomy_show filter"})
		}
		filter.ShowID = id
	}
	if raw := strings.TrimSpace(c.QueryParam("planetarium_dome")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid planetarium_dome filter"})
		}
		filter.DomeID = id
	}

	sessions, err := h.Sessions.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list sessions failed"})
	}
	return c.JSON(http.StatusOK, sessions)
}

// GetSession handles GET /v1/show-sessions/:id and returns the detail
// view including every taken place.
func (h *SessionHandler) GetSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	detail, err := h.Sessions.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// GetAvailability handles GET /v1/show-sessions/:id/availability.  The
// count is derived on every request and never cached.
func (h *SessionHandler) GetAvailability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	available, err := h.Sessions.TicketsAvailable(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load availability failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_session":      id,
		"tickets_available": available,
	})
}
