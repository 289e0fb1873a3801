package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/definition"
	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
)

func TestParseBareScript(t *testing.T) {
	m, err := definition.Parse("/migrations", "20250103_140520_init.surql")
	require.NoError(t, err)
	assert.Equal(t, migration.Up, m.Kind)
	assert.Equal(t, "init", m.Title)
	assert.Equal(t, "20250103_140520", m.Key.String())
}

func TestParseUpScript(t *testing.T) {
	m, err := definition.Parse("/migrations", "20250103_140520_init.up.surql")
	require.NoError(t, err)
	assert.Equal(t, migration.Up, m.Kind)
}

func TestParseDownScript(t *testing.T) {
	m, err := definition.Parse("/migrations", "20250103_140520_init.down.surql")
	require.NoError(t, err)
	assert.Equal(t, migration.Down, m.Kind)
}

func TestParseNoTitle(t *testing.T) {
	m, err := definition.Parse("/migrations", "20250103_140520.surql")
	require.NoError(t, err)
	assert.Equal(t, "", m.Title)
}

func TestParseTitleWithUnderscoresBecomesSpaces(t *testing.T) {
	m, err := definition.Parse("/migrations", "20250103_140520_add_users_table.surql")
	require.NoError(t, err)
	assert.Equal(t, "add users table", m.Title)
}

func TestParseRejectsAmbiguousDirection(t *testing.T) {
	_, err := definition.Parse("/migrations", "20250103_140520.up.down.surql")
	assert.ErrorIs(t, err, migrateerr.ErrAmbiguousDirection)
}

func TestParseRejectsMissingDate(t *testing.T) {
	_, err := definition.Parse("/migrations", "foo.surql")
	assert.ErrorIs(t, err, migrateerr.ErrMissingDate)
}

func TestParseRejectsInvalidDate(t *testing.T) {
	_, err := definition.Parse("/migrations", "2025010a_140520.surql")
	assert.ErrorIs(t, err, migrateerr.ErrInvalidDate)
}

func TestParseRejectsMissingTime(t *testing.T) {
	_, err := definition.Parse("/migrations", "20250103_1405.surql")
	assert.ErrorIs(t, err, migrateerr.ErrMissingTime)
}

func TestParseRejectsInvalidExtension(t *testing.T) {
	_, err := definition.Parse("/migrations", "20250103_140520_init.sql")
	assert.ErrorIs(t, err, migrateerr.ErrInvalidFilename)
}

func TestParseRejectsEmptyFilename(t *testing.T) {
	_, err := definition.Parse("/migrations", "")
	assert.ErrorIs(t, err, migrateerr.ErrNoFilename)
}

func TestNewBaselineNeverProducedByParse(t *testing.T) {
	key, err := migration.ParseKey("20250103_140520")
	require.NoError(t, err)
	baseline := definition.NewBaseline(key, "initial state", "")
	assert.Equal(t, migration.Baseline, baseline.Kind)

	parsed, err := definition.Parse("/migrations", "20250103_140520.surql")
	require.NoError(t, err)
	assert.NotEqual(t, migration.Baseline, parsed.Kind)
}

func TestEmitRejectsBaseline(t *testing.T) {
	key, _ := migration.ParseKey("20250103_140520")
	_, err := definition.Emit(key, migration.Baseline, "", definition.DefaultEmitOptions())
	assert.ErrorIs(t, err, migrateerr.ErrBaselineNotEmitable)
}

func TestEmitUpWithPostfix(t *testing.T) {
	key, _ := migration.ParseKey("20250103_140520")
	name, err := definition.Emit(key, migration.Up, "init", definition.DefaultEmitOptions())
	require.NoError(t, err)
	assert.Equal(t, "20250103_140520_init.up.surql", name)
}

func TestEmitUpWithoutPostfix(t *testing.T) {
	key, _ := migration.ParseKey("20250103_140520")
	name, err := definition.Emit(key, migration.Up, "init", definition.EmitOptions{UpPostfix: false})
	require.NoError(t, err)
	assert.Equal(t, "20250103_140520_init.surql", name)
}

func TestEmitDown(t *testing.T) {
	key, _ := migration.ParseKey("20250103_140520")
	name, err := definition.Emit(key, migration.Down, "init", definition.DefaultEmitOptions())
	require.NoError(t, err)
	assert.Equal(t, "20250103_140520_init.down.surql", name)
}

func TestEmitParseRoundTrip(t *testing.T) {
	key, _ := migration.ParseKey("20250103_140520")
	name, err := definition.Emit(key, migration.Up, "add users table", definition.DefaultEmitOptions())
	require.NoError(t, err)

	m, err := definition.Parse("/migrations", name)
	require.NoError(t, err)
	assert.True(t, key.Equal(m.Key))
	assert.Equal(t, migration.Up, m.Kind)
	assert.Equal(t, "add users table", m.Title)
}
