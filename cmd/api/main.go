package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carevault/booking-platform/internal/api/router"
	"github.com/carevault/booking-platform/internal/appointments"
	appconfig "github.com/carevault/booking-platform/internal/config"
	"github.com/carevault/booking-platform/internal/escrow"
	"github.com/carevault/booking-platform/internal/observability/metrics"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/internal/slotlock"
	"github.com/carevault/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting carevault booking platform",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	clock := pricing.SystemClock()
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	engine := pricing.NewEngine(pricing.Config{
		CommissionRate:           cfg.CommissionRate,
		SubscriptionDiscountRate: cfg.SubscriptionDiscountRate,
		EmergencyMultiplier:      cfg.EmergencyMultiplier,
	}, clock, logger.Component("pricing"))

	// Storage: postgres when configured, in-memory otherwise.
	var (
		aptRepo     appointments.Repository
		escrowStore escrow.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		aptRepo = appointments.NewStore(pool)
		escrowStore = escrow.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		aptRepo = appointments.NewInMemoryRepository()
		escrowStore = escrow.NewInMemoryStore()
	}

	// Slot locking: redis when configured, in-memory otherwise.
	var locker appointments.SlotLocker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		locker = slotlock.NewRedisLocker(redisClient, cfg.SlotLockTTL, logger.Component("slotlock"))
	} else {
		logger.Warn("REDIS_ADDR not set, slot locks are process-local")
		locker = slotlock.NewMemoryLocker()
	}

	paymentWriter := appointments.NewPaymentStatusWriter(aptRepo)
	escrowService := escrow.NewService(escrowStore, paymentWriter, clock, logger.Component("escrow"), bookingMetrics)
	appointmentService := appointments.NewService(aptRepo, engine, locker, escrowService, clock, cfg.CancelCutoff, logger.Component("appointments"), bookingMetrics)

	releaseWorker := escrow.NewReleaseWorker(escrowService, cfg.EscrowReleaseDelay, cfg.EscrowReleaseInterval, clock, logger.Component("escrow-release"))
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go releaseWorker.Run(workerCtx)

	var corsOrigins []string
	if cfg.CORSAllowedCSV != "" {
		corsOrigins = strings.Split(cfg.CORSAllowedCSV, ",")
	}

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(appointmentService, logger),
		EscrowHandler:       escrow.NewHandler(escrowService, logger),
		QuoteHandler:        pricing.NewQuoteHandler(engine, logger),
		MetricsHandler:      promhttp.Handler(),
		AdminJWTSecret:      cfg.AdminJWTSecret,
		CORSAllowedOrigins:  corsOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
