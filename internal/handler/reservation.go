package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kostomeister/planetarium-api-service/internal/model"
	"github.com/kostomeister/planetarium-api-service/internal/queue"
	"github.com/kostomeister/planetarium-api-service/internal/repository"
)

// ReservationHandler exposes reservation endpoints for authenticated
// users.  Creation validates every requested seat against its session's
// dome grid, then writes the reservation and all tickets in a single
// transaction so a booking either fully succeeds or leaves no trace.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Sessions     *repository.SessionRepo
	// Publish sends the post-commit event.  Best effort: failures are
	// ignored so a broker outage never breaks bookings.  Nil disables
	// publishing, which tests rely on.
	Publish func(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

func NewReservationHandler(reservations *repository.ReservationRepo, sessions *repository.SessionRepo, publish func(ctx context.Context, ev queue.ReservationCreatedEvent) error) *ReservationHandler {
	if reservations == nil || sessions == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Sessions: sessions, Publish: publish}
}

type ticketReq struct {
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
	ShowSessionID uint64 `json:"show_session"`
}

type createReservationReq struct {
	Tickets []ticketReq `json:"tickets"`
}

type reservationResp struct {
	ID        uint64         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []model.Ticket `json:"tickets"`
}

// CreateReservation handles POST /v1/reservations.  Seats are checked
// against each session's dome before the transaction and once more at the
// storage boundary inside it; a duplicate (session, row, seat) rolls the
// whole booking back with 409.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Tickets) == 0 {
		return validationJSON(c, &model.ValidationError{Field: "tickets", Message: "tickets must not be empty"})
	}

	ctx := c.Request().Context()

	// Resolve each distinct session once and pre-validate every seat, so
	// obviously bad requests fail before any row is written.
	sessions := make(map[uint64]*repository.SessionInfo)
	tickets := make([]model.Ticket, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		if t.ShowSessionID == 0 {
			return validationJSON(c, &model.ValidationError{Field: "show_session", Message: "show_session is required"})
		}
		info, ok := sessions[t.ShowSessionID]
		if !ok {
			info, err = h.Sessions.GetWithDome(ctx, t.ShowSessionID)
			if err != nil {
				if errors.Is(err, repository.ErrSessionNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
			}
			sessions[t.ShowSessionID] = info
		}
		if err := model.ValidateSeat(t.Row, t.Seat, info.Dome); err != nil {
			var ve *model.ValidationError
			if errors.As(err, &ve) {
				return validationJSON(c, ve)
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		tickets = append(tickets, model.Ticket{
			Row:           t.Row,
			Seat:          t.Seat,
			ShowSessionID: t.ShowSessionID,
		})
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec := repository.ReservationRecord{UserID: userID}
	if err := h.Reservations.CreateTx(ctx, tx, &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	created, err := h.Reservations.CreateTicketsTx(ctx, tx, rec.ID, tickets)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already taken for this session"})
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show session not found"})
		case errors.As(err, &ve):
			return validationJSON(c, ve)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tickets failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if h.Publish != nil {
		ev := queue.ReservationCreatedEvent{
			ReservationID: rec.ID,
			UserID:        userID,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, t := range created {
			ev.Seats = append(ev.Seats, queue.ReservationSeat{
				ShowSessionID: t.ShowSessionID,
				Row:           t.Row,
				Seat:          t.Seat,
			})
		}
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = h.Publish(pubCtx, ev)
		}()
	}

	return c.JSON(http.StatusCreated, reservationResp{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Tickets:   created,
	})
}

// ListReservations handles GET /v1/reservations and returns only the
// caller's reservations, most recent first.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// GetReservation handles GET /v1/reservations/:id.  A reservation owned
// by another user is reported as not found rather than forbidden, so ids
// cannot be probed.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	detail, err := h.Reservations.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteReservation handles DELETE /v1/reservations/:id.  Tickets cascade
// with the reservation, freeing the seats for rebooking.
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.DeleteForUser(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete reservation failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
