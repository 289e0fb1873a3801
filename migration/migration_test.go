package migration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/migration"
)

func TestKeyRoundTrip(t *testing.T) {
	k, err := migration.ParseKey("20250103_140520")
	require.NoError(t, err)
	assert.Equal(t, "20250103_140520", k.String())
}

func TestKeyOrdering(t *testing.T) {
	a, _ := migration.ParseKey("20250103_140520")
	b, _ := migration.ParseKey("20250104_000000")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
}

func TestNewKeyTruncatesToSecond(t *testing.T) {
	t1 := time.Date(2025, 1, 3, 14, 5, 20, 999999999, time.UTC)
	k := migration.NewKey(t1)
	assert.Equal(t, "20250103_140520", k.String())
}

func TestKindForwardBackward(t *testing.T) {
	assert.True(t, migration.Up.Forward())
	assert.True(t, migration.Baseline.Forward())
	assert.False(t, migration.Down.Forward())

	assert.True(t, migration.Down.Backward())
	assert.False(t, migration.Up.Backward())
	assert.False(t, migration.Baseline.Backward())
}

func TestKindTag(t *testing.T) {
	assert.Equal(t, byte(0x00), migration.Baseline.Tag())
	assert.Equal(t, byte(0x01), migration.Up.Tag())
	assert.Equal(t, byte(0x02), migration.Down.Tag())
}

func TestProblemString(t *testing.T) {
	p := migration.Problem{
		Kind:               migration.ProblemChecksumMismatch,
		DefinitionChecksum: 111,
		ExecutionChecksum:  222,
	}
	assert.Contains(t, p.String(), "checksum mismatch")
	assert.Contains(t, p.String(), "111")
	assert.Contains(t, p.String(), "222")
}
