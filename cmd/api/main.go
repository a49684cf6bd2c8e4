package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smilecare/booking-api/internal/config"
	appointmentHandler "github.com/smilecare/booking-api/internal/handler/appointment"
	calendarHandler "github.com/smilecare/booking-api/internal/handler/calendar"
	catalogHandler "github.com/smilecare/booking-api/internal/handler/catalog"
	healthHandler "github.com/smilecare/booking-api/internal/handler/health"
	"github.com/smilecare/booking-api/internal/middleware"
	"github.com/smilecare/booking-api/internal/repository/postgres"
	"github.com/smilecare/booking-api/internal/router"
	"github.com/smilecare/booking-api/internal/service/audit"
	"github.com/smilecare/booking-api/internal/service/booking"
	"github.com/smilecare/booking-api/internal/service/catalog"
	"github.com/smilecare/booking-api/internal/service/schedule"
	"github.com/smilecare/booking-api/pkg/clock"
	"github.com/smilecare/booking-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	systemLogRepo := postgres.NewSystemLogRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	clk := clock.New()
	auditor := audit.NewService(systemLogRepo, outboxRepo, appLogger)
	resolver := schedule.NewResolver(scheduleRepo)

	bookingSvc := booking.NewService(
		appointmentRepo, serviceRepo, patientRepo,
		resolver, auditor, clk, appLogger,
		cfg.Booking.PatientWindowDays,
	)
	scheduleSvc := schedule.NewService(
		scheduleRepo, resolver, bookingSvc, auditor, clk,
		cfg.Booking.PatientWindowDays,
		cfg.Booking.CapacityEditWindowDays,
	)
	catalogSvc := catalog.NewService(serviceRepo)

	r := router.NewRouter(
		healthHandler.NewHandler(db),
		calendarHandler.NewHandler(scheduleSvc, bookingSvc),
		appointmentHandler.NewHandler(bookingSvc),
		catalogHandler.NewHandler(catalogSvc),
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
