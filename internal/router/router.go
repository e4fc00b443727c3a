package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/cinema-ticket-booking/internal/handler"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
)

// RegisterRoutes wires the booking API onto the provided Echo
// instance. Public endpoints (health, metrics, seat maps, the gateway
// webhook) live at the top level; checkout endpoints live under /v1
// behind JWT authentication, with the rate limiter applied to the
// write paths.
func RegisterRoutes(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
	// Prometheus scrape endpoint.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Guests can inspect seat availability before authenticating.
	e.GET("/v1/shows/:id/seats", h.GetShowSeats)
	// The gateway webhook authenticates via its own signature scheme,
	// not user JWTs.
	e.POST("/v1/payments/webhook", h.Webhook)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/shows/:id/order", h.CreateOrder, rateLimit)
	auth.POST("/payments/:id/verify", h.VerifyPayment, rateLimit)
	auth.GET("/my/history", h.History)
}
