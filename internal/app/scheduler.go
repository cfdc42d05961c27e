package app

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/alert"
	"go.uber.org/zap"
)

// Scheduler запускает рассылку один раз или периодически
type Scheduler struct {
	run      func(ctx context.Context) error
	interval time.Duration
	alerter  alert.Alerter
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик; interval 0 означает однократный запуск
func NewScheduler(run func(ctx context.Context) error, interval time.Duration, alerter alert.Alerter, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		run:      run,
		interval: interval,
		alerter:  alerter,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// RunOnce выполняет один проход. Ошибка логируется (в том числе в дневной файл),
// отправляется алертом и возвращается вызывающему.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	err := s.run(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrLocked) {
		s.logger.Warn("Notification sweep skipped", zap.Error(err))
		return nil
	}

	s.logger.Error("Error Sending Notification(s)", zap.Error(err))

	if alertErr := s.alerter.Alert(ctx, "Error Sending Notification(s): "+err.Error()); alertErr != nil {
		s.logger.Warn("Failed to send alert", zap.Error(alertErr))
	}

	return err
}

// Start запускает первый проход сразу, затем по таймеру до Stop или отмены ctx
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting notification scheduler", zap.Duration("interval", s.interval))

	_ = s.RunOnce(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("Notification scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Notification scheduler cancelled")
			return
		}
	}
}

// Stop останавливает периодический запуск
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping notification scheduler")
	close(s.stopChan)
}
