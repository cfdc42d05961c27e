package course

import (
	"context"
	"database/sql"
)

var renameLateDayExceptions = Migration{
	Version: 20231020170229,
	Name:    "rename_late_day_exceptions_table",
	Up: func(ctx context.Context, tx *sql.Tx, _ Target) error {
		return execAll(ctx, tx, renameLateDayExceptionsUp)
	},
	Down: func(ctx context.Context, tx *sql.Tx, _ Target) error {
		return execAll(ctx, tx, renameLateDayExceptionsDown)
	},
}

var renameLateDayExceptionsUp = []string{
	`ALTER TABLE late_day_exceptions RENAME TO excused_absence_extensions`,
	`ALTER TABLE excused_absence_extensions RENAME COLUMN late_day_exceptions TO excused_absence_extensions`,
	`ALTER TABLE late_day_cache RENAME COLUMN late_day_exceptions TO excused_absence_extensions`,
}

var renameLateDayExceptionsDown = []string{
	`ALTER TABLE excused_absence_extensions RENAME TO late_day_exceptions`,
	`ALTER TABLE late_day_exceptions RENAME COLUMN excused_absence_extensions TO late_day_exceptions`,
	`ALTER TABLE late_day_cache RENAME COLUMN excused_absence_extensions TO late_day_exceptions`,
}
