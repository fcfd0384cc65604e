package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/handler"
	"github.com/kostomeister/planetarium-api-service/internal/middleware"
)

// CatalogHandlers bundles the handlers behind the browse and admin
// catalog routes.
type CatalogHandlers struct {
	Domes    *handler.DomeHandler
	Themes   *handler.ThemeHandler
	Shows    *handler.ShowHandler
	Sessions *handler.SessionHandler
}

// RegisterCatalog registers catalog endpoints under /v1.  Every route
// requires a valid JWT; reads accept any authenticated role while
// mutations additionally require ADMIN.  The cache middleware wraps the
// browse GETs only: availability is derived per request and must never
// be served stale.
func RegisterCatalog(e *echo.Echo, h CatalogHandlers, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "CUSTOMER"),
	)
	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Planetarium domes ----
	admin.POST("/planetarium-domes", h.Domes.CreateDome)
	g.GET("/planetarium-domes", h.Domes.ListDomes, cache)
	g.GET("/planetarium-domes/:id", h.Domes.GetDome, cache)

	// ---- Show themes ----
	admin.POST("/show-themes", h.Themes.CreateTheme)
	g.GET("/show-themes", h.Themes.ListThemes, cache)

	// ---- Astronomy shows ----
	admin.POST("/astronomy-shows", h.Shows.CreateShow)
	admin.PUT("/astronomy-shows/:id", h.Shows.UpdateShow)
	admin.PATCH("/astronomy-shows/:id", h.Shows.UpdateShow)
	admin.DELETE("/astronomy-shows/:id", h.Shows.DeleteShow)
	g.GET("/astronomy-shows", h.Shows.ListShows, cache)
	g.GET("/astronomy-shows/:id", h.Shows.GetShow, cache)

	// ---- Show sessions ----
	admin.POST("/show-sessions", h.Sessions.CreateSession)
	admin.PUT("/show-sessions/:id", h.Sessions.UpdateSession)
	admin.PATCH("/show-sessions/:id", h.Sessions.UpdateSession)
	admin.DELETE("/show-sessions/:id", h.Sessions.DeleteSession)
	g.GET("/show-sessions", h.Sessions.ListSessions)
	g.GET("/show-sessions/:id", h.Sessions.GetSession)
	g.GET("/show-sessions/:id/availability", h.Sessions.GetAvailability)
}

// RegisterReservations registers reservation endpoints under /v1.  Any
// authenticated user may book; each user only ever sees their own
// reservations.  Nothing here is cached.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "CUSTOMER"),
	)
	g.POST("/reservations", h.CreateReservation)
	g.GET("/reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)
}
