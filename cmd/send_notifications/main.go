package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/alert"
	"github.com/Freeeeeet/grade_notifier/internal/app"
	"github.com/Freeeeeet/grade_notifier/internal/config"
	"github.com/Freeeeeet/grade_notifier/internal/database"
	"github.com/Freeeeeet/grade_notifier/internal/pkg/clock"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := app.NewGuard(os.Args[0]).CheckSingleInstance(ctx); err != nil {
		fmt.Printf("ERROR!  %v.  Exiting.\n", err)
		stop()
		os.Exit(1)
	}

	config.LoadEnv()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("[%s] ERROR: CORE SUBMITTY CONFIGURATION ERROR %v\n", time.Now().Format(time.DateTime), err)
		stop()
		os.Exit(1)
	}

	clk := clock.Real()

	logger, logFile, err := app.WithDailyFile(app.NewLogger(cfg.Environment), cfg.NotificationLogDir(), clk)
	if err != nil {
		fmt.Printf("[%s] ERROR: CORE SUBMITTY CONFIGURATION ERROR %v\n", time.Now().Format(time.DateTime), err)
		stop()
		os.Exit(1)
	}

	run(ctx, cfg, clk, logger)

	_ = logger.Sync()
	_ = logFile.Close()
	stop()
}

func loadConfig() (*config.Config, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// run ошибки рассылки только логируются: код выхода остаётся 0
func run(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *zap.Logger) {
	job := app.NewSweepJob(database.NewConnector(cfg), cfg.BaseURL, clk, logger)

	scheduler := app.NewScheduler(func(ctx context.Context) error {
		_, err := job.Run(ctx)
		return err
	}, cfg.SweepInterval, newAlerter(cfg, logger), logger)

	scheduler.Start(ctx)
}

func newAlerter(cfg *config.Config, logger *zap.Logger) alert.Alerter {
	if !cfg.AlertsEnabled() {
		return alert.NopAlerter{}
	}

	alerter, err := alert.NewTelegramAlerter(cfg.TelegramToken, cfg.TelegramAlertChatID, "[send_notifications]")
	if err != nil {
		logger.Warn("Telegram alerts disabled", zap.Error(err))
		return alert.NopAlerter{}
	}

	return alerter
}
