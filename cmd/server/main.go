package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/app"
	"github.com/Freeeeeet/campus_booking/internal/cache"
	"github.com/Freeeeeet/campus_booking/internal/config"
	"github.com/Freeeeeet/campus_booking/internal/repository"
	"github.com/Freeeeeet/campus_booking/internal/server"
	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/Freeeeeet/campus_booking/internal/storage/memory"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogFile)
	defer logger.Sync()

	logger.Info("Starting campus booking server",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		slotStore        service.SlotStore
		appointmentStore service.AppointmentStore
		userStore        service.UserStore
		messageStore     service.MessageStore
	)

	if cfg.DBDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Fatal("Failed to create connection pool", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()

		slotStore = repository.NewSlotRepository(pool)
		appointmentStore = repository.NewAppointmentRepository(pool)
		userStore = repository.NewUserRepository(pool)
		messageStore = repository.NewMessageRepository(pool)
	} else {
		// Без DB_DSN все данные живут в памяти процесса
		logger.Warn("DB_DSN is not set, using in-memory storage")

		slotStore = memory.NewSlotStore()
		appointmentStore = memory.NewAppointmentStore()
		userStore = memory.NewUserStore()
		messageStore = memory.NewMessageStore()
	}

	avail := cache.New(cfg.RedisAddr, logger)
	defer avail.Close()

	bookingService := service.NewBookingService(slotStore, appointmentStore, logger)
	userService := service.NewUserService(userStore, logger)
	messageService := service.NewMessageService(messageStore, logger)

	scheduler := app.NewScheduler(bookingService, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	srv := server.NewServer(bookingService, userService, messageService, avail, logger, cfg.JWTSecret)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           corsHandler.Handler(srv.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
