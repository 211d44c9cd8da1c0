package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами по cron-расписанию.
type Scheduler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
	cron           *cron.Cron
}

// NewScheduler создаёт новый планировщик
func NewScheduler(bookingService *service.BookingService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		bookingService: bookingService,
		logger:         logger,
		cron:           cron.New(),
	}
}

// Start регистрирует задачи и запускает планировщик. Завершение прошедших
// записей выполняется сразу при старте и далее каждую ночь.
func (s *Scheduler) Start(ctx context.Context) error {
	s.sweep(ctx)

	if _, err := s.cron.AddFunc("30 3 * * *", func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Background scheduler started")
	return nil
}

// Stop останавливает планировщик и дожидается выполняющихся задач
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Background scheduler stopped")
}

// sweep завершает активные записи с прошедшей датой
func (s *Scheduler) sweep(ctx context.Context) {
	count, err := s.bookingService.CompletePastAppointments(ctx)
	if err != nil {
		s.logger.Error("Failed to complete past appointments", zap.Error(err))
		return
	}

	if count > 0 {
		s.logger.Info("Past appointments completed", zap.Int("count", count))
	}
}
