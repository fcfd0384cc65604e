package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

// ThemeHandler exposes show theme endpoints.
type ThemeHandler struct {
	Themes *repository.ThemeRepo
}

func NewThemeHandler(themes *repository.ThemeRepo) *ThemeHandler {
	if themes == nil {
		panic("nil repository passed to NewThemeHandler")
	}
	return &ThemeHandler{Themes: themes}
}

type themeReq struct {
	Name string `json:"name"`
}

// CreateTheme handles POST /v1/show-themes.
func (h *ThemeHandler) CreateTheme(c echo.Context) error {
	var req themeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return validationJSON(c, &model.ValidationError{Field: "name", Message: "name is required"})
	}

	theme := repository.Theme{Name: req.Name}
	if err := h.Themes.Create(c.Request().Context(), &theme); err != nil {
		if errors.Is(err, repository.ErrThemeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "show theme already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create theme failed"})
	}
	return c.JSON(http.StatusCreated, theme)
}

// ListThemes handles GET /v1/show-themes.
func (h *ThemeHandler) ListThemes(c echo.Context) error {
	themes, err := h.Themes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list themes failed"})
	}
	return c.JSON(http.StatusOK, themes)
}
