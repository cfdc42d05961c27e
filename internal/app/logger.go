package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/pkg/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(env string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}

	logger, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return logger

}

// DailyLogPath файл лога за день: <dir>/YYYYMMDD.txt
func DailyLogPath(dir string, day time.Time) string {
	return filepath.Join(dir, day.Format("20060102")+".txt")
}

// dailyFile WriteSyncer, который при смене дня переоткрывает <dir>/YYYYMMDD.txt
type dailyFile struct {
	mu    sync.Mutex
	dir   string
	clock clock.Clock
	day   string
	file  *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.rotate(); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.day = ""
	return err
}

// rotate вызывается под mu
func (d *dailyFile) rotate() error {
	now := d.clock.Now()
	day := now.Format("20060102")
	if d.file != nil && d.day == day {
		return nil
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(DailyLogPath(d.dir, now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = f
	d.day = day
	return nil
}

// WithDailyFile дублирует ошибки логгера в дневной файл (режим дозаписи).
// В файл попадают только записи уровня Error и выше; файл дня выбирается
// по clk при каждой записи, поэтому долгоживущий процесс переходит на новый
// файл после полуночи.
func WithDailyFile(logger *zap.Logger, dir string, clk clock.Clock) (*zap.Logger, io.Closer, error) {
	out := &dailyFile{dir: dir, clock: clk}
	out.mu.Lock()
	err := out.rotate()
	out.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		out,
		zapcore.ErrorLevel,
	)

	logger = logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))

	return logger, out, nil
}
