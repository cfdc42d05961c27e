package app

import (
	"context"
	"errors"

	"github.com/Freeeeeet/grade_notifier/internal/database"
	"github.com/Freeeeeet/grade_notifier/internal/model"
	"github.com/Freeeeeet/grade_notifier/internal/pkg/clock"
	"github.com/Freeeeeet/grade_notifier/internal/repository"
	"github.com/Freeeeeet/grade_notifier/internal/service"
	"go.uber.org/zap"
)

// ErrLocked рассылка уже выполняется другим процессом (advisory lock занят)
var ErrLocked = errors.New("notification sweep is locked by another process")

// SweepJob один проход рассылки: соединение с главной базой, advisory lock, Sweep
type SweepJob struct {
	connector *database.Connector
	baseURL   string
	clock     clock.Clock
	logger    *zap.Logger
}

func NewSweepJob(connector *database.Connector, baseURL string, clk clock.Clock, logger *zap.Logger) *SweepJob {
	return &SweepJob{
		connector: connector,
		baseURL:   baseURL,
		clock:     clk,
		logger:    logger,
	}
}

// Run выполняет проход. Соединения с базами курсов закрываются после каждого курса.
func (j *SweepJob) Run(ctx context.Context) (*service.SweepResult, error) {
	master, err := j.connector.Connect(ctx, database.MasterDBName)
	if err != nil {
		return nil, err
	}
	defer master.Close(context.WithoutCancel(ctx))

	masterRepo := repository.NewMasterRepository(master)

	locked, err := masterRepo.TryAdvisoryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		if err := masterRepo.AdvisoryUnlock(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("Failed to release sweep lock", zap.Error(err))
		}
	}()

	svc := service.NewNotificationService(masterRepo, j.openCourse, j.baseURL, j.clock, j.logger)
	return svc.Sweep(ctx)
}

func (j *SweepJob) openCourse(ctx context.Context, course model.Course) (service.CourseStore, func(context.Context) error, error) {
	conn, err := j.connector.Connect(ctx, database.CourseDBName(course.Term, course.Course))
	if err != nil {
		return nil, nil, err
	}
	return repository.NewCourseRepository(conn), conn.Close, nil
}
