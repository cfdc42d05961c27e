// Package course содержит миграции схемы базы отдельного курса.
package course

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Freeeeeet/grade_notifier/internal/config"
	"github.com/pressly/goose/v3"
)

// Target курс, к базе которого применяется миграция
type Target struct {
	Config *config.Config
	Term   string
	Course string
}

// MigrateFunc шаг миграции; SQL выполняется синхронно, ошибка уходит раннеру
type MigrateFunc func(ctx context.Context, tx *sql.Tx, target Target) error

// Migration обратимая миграция базы курса
type Migration struct {
	Version int64
	Name    string
	Up      MigrateFunc
	Down    MigrateFunc
}

// registry все миграции курса в порядке версий
var registry = []Migration{
	renameLateDayExceptions,
}

// GooseMigrations оборачивает миграции для goose.Provider, замыкая target
func GooseMigrations(target Target) []*goose.Migration {
	out := make([]*goose.Migration, 0, len(registry))
	for _, m := range registry {
		out = append(out, goose.NewGoMigration(
			m.Version,
			&goose.GoFunc{RunTx: bind(m.Up, target)},
			&goose.GoFunc{RunTx: bind(m.Down, target)},
		))
	}
	return out
}

func bind(fn MigrateFunc, target Target) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx, target)
	}
}

func execAll(ctx context.Context, tx *sql.Tx, statements []string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
