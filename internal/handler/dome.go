package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

// DomeHandler exposes planetarium dome endpoints.  Creation is limited
// to admins by middleware; listing and detail are open to any
// authenticated user.
type DomeHandler struct {
	Domes *repository.DomeRepo
}

func NewDomeHandler(domes *repository.DomeRepo) *DomeHandler {
	if domes == nil {
		panic("nil repository passed to NewDomeHandler")
	}
	return &DomeHandler{Domes: domes}
}

type domeReq struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
}

// domeResp adds the derived capacity to the stored fields.
type domeResp struct {
	model.Dome
	Capacity int `json:"capacity"`
}

func toDomeResp(d model.Dome) domeResp {
	return domeResp{Dome: d, Capacity: d.Capacity()}
}

// CreateDome handles POST /v1/planetarium-domes.
func (h *DomeHandler) CreateDome(c echo.Context) error {
	var req domeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return validationJSON(c, &model.ValidationError{Field: "name", Message: "name is required"})
	}
	if req.Rows < 1 {
		return validationJSON(c, &model.ValidationError{Field: "rows", Message: "rows must be at least 1"})
	}
	if req.SeatsInRow < 1 {
		return validationJSON(c, &model.ValidationError{Field: "seats_in_row", Message: "seats_in_row must be at least 1"})
	}

	dome := model.Dome{Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := h.Domes.Create(c.Request().Context(), &dome); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create dome failed"})
	}
	return c.JSON(http.StatusCreated, toDomeResp(dome))
}

// ListDomes handles GET /v1/planetarium-domes.
func (h *DomeHandler) ListDomes(c echo.Context) error {
	domes, err := h.Domes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list domes failed"})
	}
	out := make([]domeResp, 0, len(domes))
	for _, d := range domes {
		out = append(out, toDomeResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

// GetDome handles GET /v1/planetarium-domes/:id.
func (h *DomeHandler) GetDome(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dome id"})
	}
	dome, err := h.Domes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrDomeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "planetarium dome not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dome failed"})
	}
	return c.JSON(http.StatusOK, toDomeResp(*dome))
}
