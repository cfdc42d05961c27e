package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Freeeeeet/grade_notifier/internal/migrations/course"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator обёртка над goose.Provider для базы одного курса
type Migrator struct {
	provider *goose.Provider
	target   course.Target
	logger   *zap.Logger
}

// NewMigrator создаёт мигратор; db закрывается вместе с ним в Close
func NewMigrator(db *sql.DB, target course.Target, logger *zap.Logger) (*Migrator, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(course.GooseMigrations(target)...),
	)
	if err != nil {
		return nil, fmt.Errorf("create goose provider: %w", err)
	}

	return &Migrator{
		provider: provider,
		target:   target,
		logger: logger.With(
			zap.String("term", target.Term),
			zap.String("course", target.Course)),
	}, nil
}

// Up применяет все pending миграции
func (mg *Migrator) Up(ctx context.Context) error {
	mg.logger.Info("Applying course migrations")

	results, err := mg.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		mg.logger.Info("Migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("duration", r.Duration))
	}

	mg.logger.Info("Course migrations applied", zap.Int("applied", len(results)))
	return nil
}

// Down откатывает последнюю применённую миграцию
func (mg *Migrator) Down(ctx context.Context) error {
	mg.logger.Info("Rolling back last course migration")

	result, err := mg.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}

	mg.logger.Info("Migration rolled back",
		zap.Int64("version", result.Source.Version),
		zap.Duration("duration", result.Duration))
	return nil
}

// Version показывает текущую версию миграций
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := mg.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает соединение мигратора
func (mg *Migrator) Close() error {
	return mg.provider.Close()
}
