package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
)

// GetShowSeats handles GET /v1/shows/:id/seats. It returns the
// availability state of every seat of the show's grid so guests can
// pick seats before checkout. Status values are FREE, HELD or BOOKED;
// no authentication is required.
func (h *BookingHandler) GetShowSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Store.GetShow(ctx, showID); err != nil {
		if errors.Is(err, booking.ErrNoRow) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	states, err := h.Ledger.SeatMap(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	// render in grid order rather than map order
	seats := make([]echo.Map, 0, len(states))
	for _, label := range booking.AllSeatLabels() {
		seats = append(seats, echo.Map{
			"seat":   label,
			"status": states[label],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id": showID,
		"seats":   seats,
	})
}
