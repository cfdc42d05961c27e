package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/app"
	"github.com/Freeeeeet/grade_notifier/internal/config"
	"github.com/Freeeeeet/grade_notifier/internal/database"
	"github.com/Freeeeeet/grade_notifier/internal/migrations/course"
	"github.com/Freeeeeet/grade_notifier/internal/model"
	"github.com/Freeeeeet/grade_notifier/internal/repository"
	"go.uber.org/zap"
)

type options struct {
	direction string
	term      string
	course    string
	configDir string
}

func main() {
	var opts options
	flag.StringVar(&opts.direction, "direction", "up", "migration direction: up or down (one step)")
	flag.StringVar(&opts.term, "term", "", "term id (default: the active term)")
	flag.StringVar(&opts.course, "course", "", "course code (default: every course of the term)")
	flag.StringVar(&opts.configDir, "config", "", "config directory (default: ../config next to the binary)")
	flag.Parse()

	if opts.direction != "up" && opts.direction != "down" {
		log.Fatalf("Unknown direction %q", opts.direction)
	}

	config.LoadEnv()

	cfg, err := loadConfig(opts.configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, opts, logger)
	stop()

	os.Exit(exitCode(logger, err))
}

// exitCode логирует ошибку и сбрасывает буферы логгера до выхода процесса
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("Course migrations failed", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
	}
	return config.Load(dir)
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	connector := database.NewConnector(cfg)

	courses, err := resolveCourses(ctx, connector, opts.term, opts.course)
	if err != nil {
		return fmt.Errorf("resolve courses: %w", err)
	}

	return migrateAll(ctx, courses, func(ctx context.Context, target course.Target) (int64, error) {
		return migrateCourse(ctx, connector, target, opts.direction, logger)
	}, cfg, opts.direction, logger)
}

type migrateFunc func(ctx context.Context, target course.Target) (int64, error)

// migrateAll мигрирует курсы по очереди и останавливается на первой ошибке
func migrateAll(ctx context.Context, courses []model.Course, migrate migrateFunc, cfg *config.Config, direction string, logger *zap.Logger) error {
	for _, c := range courses {
		target := course.Target{Config: cfg, Term: c.Term, Course: c.Course}

		version, err := migrate(ctx, target)
		if err != nil {
			return fmt.Errorf("migrate %s/%s: %w", c.Term, c.Course, err)
		}

		logger.Info("Course migrated",
			zap.String("term", c.Term),
			zap.String("course", c.Course),
			zap.Int64("version", version))
	}

	logger.Info("Migrations finished", zap.Int("courses", len(courses)), zap.String("direction", direction))
	return nil
}

func resolveCourses(ctx context.Context, connector *database.Connector, term, courseID string) ([]model.Course, error) {
	if term != "" && courseID != "" {
		return []model.Course{{Term: term, Course: courseID}}, nil
	}

	master, err := connector.Connect(ctx, database.MasterDBName)
	if err != nil {
		return nil, err
	}
	defer master.Close(ctx)

	repo := repository.NewMasterRepository(master)

	if term == "" {
		terms, err := repo.ActiveTerms(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		if len(terms) == 0 {
			return nil, fmt.Errorf("no active term, pass -term")
		}
		term = terms[0].ID
	}

	courses, err := repo.CoursesForTerm(ctx, term)
	if err != nil {
		return nil, err
	}

	if courseID == "" {
		return courses, nil
	}
	for _, c := range courses {
		if c.Course == courseID {
			return []model.Course{c}, nil
		}
	}
	return nil, fmt.Errorf("course %s not found in term %s", courseID, term)
}

// migrateCourse возвращает версию схемы курса после миграции
func migrateCourse(ctx context.Context, connector *database.Connector, target course.Target, direction string, logger *zap.Logger) (int64, error) {
	db, err := connector.OpenDB(database.CourseDBName(target.Term, target.Course))
	if err != nil {
		return 0, err
	}

	migrator, err := app.NewMigrator(db, target, logger)
	if err != nil {
		db.Close()
		return 0, err
	}
	defer migrator.Close()

	if direction == "down" {
		err = migrator.Down(ctx)
	} else {
		err = migrator.Up(ctx)
	}
	if err != nil {
		return 0, err
	}

	return migrator.Version(ctx)
}
