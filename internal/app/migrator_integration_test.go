//go:build integration

package app

import (
	"context"
	"testing"

	"github.com/Freeeeeet/grade_notifier/internal/database"
	"github.com/Freeeeeet/grade_notifier/internal/migrations/course"
	"github.com/Freeeeeet/grade_notifier/internal/testutil/pgtest"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type columnRef struct {
	Table  string
	Column string
}

func renamedColumns(t *testing.T, conn *pgx.Conn) []columnRef {
	t.Helper()

	rows, err := conn.Query(context.Background(), `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
			AND table_name IN ('late_day_exceptions', 'excused_absence_extensions', 'late_day_cache')
		ORDER BY table_name, ordinal_position`)
	require.NoError(t, err)

	cols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[columnRef])
	require.NoError(t, err)
	return cols
}

func TestMigrator_RenameLateDayExceptionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	connector := pgtest.Connector(t)

	dbName := database.CourseDBName("f23", "csci1100")
	conn := pgtest.CreateDatabase(t, connector, dbName, pgtest.CourseSchema)
	before := renamedColumns(t, conn)

	db, err := connector.OpenDB(dbName)
	require.NoError(t, err)

	migrator, err := NewMigrator(db, course.Target{Term: "f23", Course: "csci1100"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = migrator.Close() })

	require.NoError(t, migrator.Up(ctx))

	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20231020170229), version)

	after := renamedColumns(t, conn)
	assert.Contains(t, after, columnRef{"excused_absence_extensions", "excused_absence_extensions"})
	assert.Contains(t, after, columnRef{"late_day_cache", "excused_absence_extensions"})
	assert.NotContains(t, after, columnRef{"late_day_exceptions", "late_day_exceptions"})

	require.NoError(t, migrator.Down(ctx))

	assert.Equal(t, before, renamedColumns(t, conn))

	version, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
}
