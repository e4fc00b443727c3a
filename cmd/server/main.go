package main // Entry point package

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/config"
	"github.com/iliyamo/cinema-ticket-booking/internal/database"
	"github.com/iliyamo/cinema-ticket-booking/internal/handler"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/payment"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/metrics"
	"github.com/iliyamo/cinema-ticket-booking/internal/queue"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
	"github.com/iliyamo/cinema-ticket-booking/internal/router"
	"github.com/iliyamo/cinema-ticket-booking/internal/worker"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()
	m := metrics.Init()

	// Storage handle with explicit startup and shutdown lifecycle.
	var store booking.Store
	switch cfg.Store {
	case "memory":
		mem := repository.NewMemoryStore()
		seedDemoShow(mem)
		store = mem
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Fatal("database connect failed", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		if err := repository.Migrate(context.Background(), db); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		store = repository.NewMySQLStore(db)
	}

	// Booking core wiring.
	gateway := payment.NewMockGateway()
	ledger := booking.NewSeatLedger(store)
	holds := booking.NewHoldManager(store, ledger)
	intents := booking.NewIntentService(store, holds, gateway, cfg.HoldTTL)

	var announcer booking.BookingAnnouncer
	if cfg.QueueEnabled {
		announcer = queue.NewPublisher()
		go queue.StartBookingConsumer()
	}
	finalizer := booking.NewFinalizer(store, holds, announcer)
	verifier := booking.NewVerifier(store, gateway, holds, finalizer)

	// Background reaper reclaiming abandoned holds.
	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	reaper := worker.NewExpiryReaper(holds, cfg.ReaperInterval)
	go reaper.Start(reaperCtx)

	// HTTP server.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Prometheus(m))

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	h := handler.NewBookingHandler(store, intents, verifier, ledger)
	router.RegisterRoutes(e, h, cfg.JWTSecret, rateLimit)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancelReaper()
	reaper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

// seedDemoShow registers a single show so the memory-backed dev mode
// is usable out of the box.
func seedDemoShow(mem *repository.MemoryStore) {
	sh := &model.Show{
		MovieTitle: "Interstellar",
		CinemaName: "City Center Cinema",
		ScreenName: "Screen 1",
		StartsAt:   time.Now().UTC().Add(24 * time.Hour),
		PriceCents: 20000,
	}
	if err := mem.CreateShow(context.Background(), sh); err == nil {
		logger.Info("seeded demo show", zap.Uint64("show_id", sh.ID))
	}
}
