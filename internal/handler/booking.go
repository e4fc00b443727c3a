package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
)

// BookingHandler groups the booking core services behind the HTTP
// surface: checkout creation, payment verification, the gateway
// webhook and checkout history. All methods assume JWT authentication
// has already been performed by middleware; they return 401 when the
// user identity cannot be extracted from the context.
type BookingHandler struct {
	Store    booking.Store          // read access for history listings
	Intents  *booking.IntentService // opens checkouts
	Verifier *booking.Verifier      // verifies payments and finalizes bookings
	Ledger   *booking.SeatLedger    // seat availability maps
}

// NewBookingHandler constructs a BookingHandler with the provided
// dependencies. All dependencies must be non-nil.
func NewBookingHandler(store booking.Store, intents *booking.IntentService, verifier *booking.Verifier, ledger *booking.SeatLedger) *BookingHandler {
	if store == nil || intents == nil || verifier == nil || ledger == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Store: store, Intents: intents, Verifier: verifier, Ledger: ledger}
}

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.
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

// respondError translates the booking core's typed errors into HTTP
// responses. Conflict responses carry the precise conflicting seat
// subset when known so the client can offer reselection.
func respondError(c echo.Context, err error) error {
	var (
		validation *booking.ValidationError
		notFound   *booking.NotFoundError
		forbidden  *booking.ForbiddenError
		conflict   *booking.ConflictError
		verifyErr  *booking.VerificationError
		badState   *booking.InvalidStateError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Msg})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.As(err, &forbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.As(err, &conflict):
		body := echo.Map{"error": conflict.Reason}
		if len(conflict.Seats) > 0 {
			body["conflicting_seats"] = conflict.Seats
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &verifyErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verifyErr.Msg})
	case errors.As(err, &badState):
		return c.JSON(http.StatusConflict, echo.Map{"error": badState.Msg})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// CreateOrder handles POST /v1/shows/:id/order. It opens a checkout
// for the requested seats: validates the seat list, acquires holds and
// creates a payment against the mock gateway. Returns 201 with the
// payment id, gateway order credentials, amount and a display snapshot
// of the show.
func (h *BookingHandler) CreateOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	intent, err := h.Intents.CreateIntent(c.Request().Context(), userID, showID, body.Seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"payment_id":    intent.PaymentID,
		"order_id":      intent.OrderID,
		"client_secret": intent.ClientSecret,
		"amount_cents":  intent.AmountCents,
		"seats":         intent.Seats,
		"show":          intent.Show,
		"expires_at":    intent.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// VerifyPayment handles POST /v1/payments/:id/verify. It validates the
// gateway confirmation and finalizes the booking in one combined
// operation. Returns 201 with the confirmed booking.
func (h *BookingHandler) VerifyPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	paymentID := c.Param("id")
	if paymentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	var conf payment.Confirmation
	if err := c.Bind(&conf); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Verifier.Verify(c.Request().Context(), userID, paymentID, conf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":         b.ID,
		"seats":              b.Seats,
		"total_amount_cents": b.TotalCents,
		"ticket_code":        b.TicketCode,
		"status":             b.Status,
	})
}

// Webhook handles POST /v1/payments/webhook. The mock gateway sends no
// usable events, so the payload is accepted unconditionally; a real
// gateway collaborator would route confirmed events into the verifier
// asynchronously.
func (h *BookingHandler) Webhook(c echo.Context) error {
	return c.JSON(http.StatusAccepted, echo.Map{"received": true})
}

// History handles GET /v1/my/history. It returns the user's payments
// and bookings, newest first. When nothing exists, both lists are
// empty arrays.
func (h *BookingHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	payments, err := h.Store.PaymentsByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payments"})
	}
	bookings, err := h.Store.BookingsByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}

	paymentItems := make([]echo.Map, 0, len(payments))
	for _, p := range payments {
		paymentItems = append(paymentItems, echo.Map{
			"payment_id":   p.ID,
			"show_id":      p.ShowID,
			"seats":        p.Seats,
			"amount_cents": p.AmountCents,
			"status":       p.Status,
			"created_at":   p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	bookingItems := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		bookingItems = append(bookingItems, echo.Map{
			"booking_id":         b.ID,
			"show_id":            b.ShowID,
			"seats":              b.Seats,
			"total_amount_cents": b.TotalCents,
			"ticket_code":        b.TicketCode,
			"status":             b.Status,
			"created_at":         b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"payments": paymentItems,
		"bookings": bookingItems,
	})
}
