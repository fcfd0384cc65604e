package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

// ShowHandler exposes astronomy show endpoints.  Mutations are limited to
// admins by middleware.
type ShowHandler struct {
	Shows *repository.ShowRepo
}

func NewShowHandler(shows *repository.ShowRepo) *ShowHandler {
	if shows == nil {
		panic("nil repository passed to NewShowHandler")
	}
	return &ShowHandler{Shows: shows}
}

type showReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ThemeIDs    []uint64 `json:"show_themes"`
}

// CreateShow handles POST /v1/astronomy-shows.
func (h *ShowHandler) CreateShow(c echo.Context) error {
	var req showReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return validationJSON(c, &model.ValidationError{Field: "title", Message: "title is required"})
	}

	show := repository.Show{Title: req.Title, Description: req.Description}
	if err := h.Shows.Create(c.Request().Context(), &show, req.ThemeIDs); err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show theme not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create show failed"})
	}
	detail, err := h.Shows.GetByID(c.Request().Context(), show.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	return c.JSON(http.StatusCreated, detail)
}

// UpdateShow handles PUT /v1/astronomy-shows/:id.  The theme set is
// replaced wholesale with the one in the request.
func (h *ShowHandler) UpdateShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req showReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return validationJSON(c, &model.ValidationError{Field: "title", Message: "title is required"})
	}

	show := repository.Show{ID: id, Title: req.Title, Description: req.Description}
	if err := h.Shows.Update(c.Request().Context(), &show, req.ThemeIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "astronomy show not found"})
		case errors.Is(err, repository.ErrThemeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show theme not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update show failed"})
	}
	detail, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteShow handles DELETE /v1/astronomy-shows/:id.
func (h *ShowHandler) DeleteShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.Shows.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "astronomy show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete show failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetShow handles GET /v1/astronomy-shows/:id.
func (h *ShowHandler) GetShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	detail, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "astronomy show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// ListShows handles GET /v1/astronomy-shows.  Supports ?title= for a
// case-insensitive substring match on the title and ?themes=1,3 to keep
// shows tagged with any of the given theme ids.
func (h *ShowHandler) ListShows(c echo.Context) error {
	filter := repository.ShowFilter{Title: strings.TrimSpace(c.QueryParam("title"))}
	if raw := strings.TrimSpace(c.QueryParam("themes")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid themes filter"})
			}
			filter.ThemeIDs = append(filter.ThemeIDs, id)
		}
	}
	shows, err := h.Shows.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list shows failed"})
	}
	return c.JSON(http.StatusOK, shows)
}
