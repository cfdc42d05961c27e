package base

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyRecorder DBTX, который только вычитывает COPY-источник
type copyRecorder struct {
	calls   int
	table   pgx.Identifier
	columns []string
	rows    [][]any
}

func (c *copyRecorder) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *copyRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (c *copyRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *copyRecorder) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	c.calls++
	c.table = table
	c.columns = columns
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		c.rows = append(c.rows, values)
	}
	return int64(len(c.rows)), src.Err()
}

func TestCopyRows_Empty(t *testing.T) {
	db := &copyRecorder{}

	n, err := NewRepository(db).CopyRows(context.Background(), "notifications", []string{"to_user_id"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, db.calls)
}

func TestCopyRows_BeyondBindParameterLimit(t *testing.T) {
	// 11000 строк по 6 колонок - больше 65535 параметров одного INSERT
	columns := []string{"component", "metadata", "content", "created_at", "from_user_id", "to_user_id"}
	rows := make([][]any, 11000)
	for i := range rows {
		rows[i] = []any{"grading", "{}", "c", nil, "submitty-admin", i}
	}

	db := &copyRecorder{}
	n, err := NewRepository(db).CopyRows(context.Background(), "notifications", columns, rows)
	require.NoError(t, err)

	assert.Equal(t, int64(11000), n)
	assert.Equal(t, 1, db.calls)
	assert.Equal(t, pgx.Identifier{"notifications"}, db.table)
	assert.Equal(t, columns, db.columns)
	assert.Equal(t, 10999, db.rows[10999][5])
}
