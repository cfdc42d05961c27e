package course

import (
	"regexp"
	"sort"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OrderedUniqueVersions(t *testing.T) {
	migrations := registry
	require.NotEmpty(t, migrations)

	versions := make([]int64, 0, len(migrations))
	seen := map[int64]bool{}
	for _, m := range migrations {
		assert.False(t, seen[m.Version], "duplicate version %d", m.Version)
		seen[m.Version] = true
		assert.NotNil(t, m.Up, m.Name)
		assert.NotNil(t, m.Down, m.Name)
		versions = append(versions, m.Version)
	}
	assert.True(t, sort.SliceIsSorted(versions, func(i, j int) bool { return versions[i] < versions[j] }))
}

func TestGooseMigrations(t *testing.T) {
	migrations := GooseMigrations(Target{Term: "f23", Course: "csci1100"})
	require.Len(t, migrations, len(registry))
	assert.Equal(t, int64(20231020170229), migrations[0].Version)
	assert.Equal(t, goose.TypeGo, migrations[0].Type)
}

var renameRe = regexp.MustCompile(`^ALTER TABLE (\w+) RENAME (?:TO (\w+)|COLUMN (\w+) TO (\w+))$`)

type schema struct {
	tables  map[string]bool
	columns map[string]map[string]bool
}

func (s *schema) apply(t *testing.T, stmt string) {
	t.Helper()

	m := renameRe.FindStringSubmatch(stmt)
	require.NotNil(t, m, "unexpected statement %q", stmt)

	table := m[1]
	require.True(t, s.tables[table], "table %s does not exist for %q", table, stmt)

	if m[2] != "" {
		delete(s.tables, table)
		s.tables[m[2]] = true
		s.columns[m[2]] = s.columns[table]
		delete(s.columns, table)
		return
	}

	require.True(t, s.columns[table][m[3]], "column %s.%s does not exist for %q", table, m[3], stmt)
	delete(s.columns[table], m[3])
	s.columns[table][m[4]] = true
}

func TestRenameLateDayExceptions_RoundTrip(t *testing.T) {
	s := &schema{
		tables: map[string]bool{"late_day_exceptions": true, "late_day_cache": true},
		columns: map[string]map[string]bool{
			"late_day_exceptions": {"user_id": true, "g_id": true, "late_day_exceptions": true},
			"late_day_cache":      {"user_id": true, "late_day_exceptions": true},
		},
	}

	for _, stmt := range renameLateDayExceptionsUp {
		s.apply(t, stmt)
	}
	assert.Equal(t, map[string]bool{"excused_absence_extensions": true, "late_day_cache": true}, s.tables)
	assert.True(t, s.columns["excused_absence_extensions"]["excused_absence_extensions"])
	assert.True(t, s.columns["late_day_cache"]["excused_absence_extensions"])

	for _, stmt := range renameLateDayExceptionsDown {
		s.apply(t, stmt)
	}
	assert.Equal(t, map[string]bool{"late_day_exceptions": true, "late_day_cache": true}, s.tables)
	assert.Equal(t, map[string]bool{"user_id": true, "g_id": true, "late_day_exceptions": true}, s.columns["late_day_exceptions"])
	assert.Equal(t, map[string]bool{"user_id": true, "late_day_exceptions": true}, s.columns["late_day_cache"])
}
