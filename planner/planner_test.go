package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/planner"
)

func mustKey(t *testing.T, s string) migration.Key {
	t.Helper()
	k, err := migration.ParseKey(s)
	require.NoError(t, err)
	return k
}

func sc(t *testing.T, key, kind string, checksum migration.Checksum) migration.ScriptContent {
	t.Helper()
	var k migration.Kind
	switch kind {
	case "up":
		k = migration.Up
	case "down":
		k = migration.Down
	case "baseline":
		k = migration.Baseline
	}
	return migration.ScriptContent{
		Migration: migration.Migration{
			Key:  mustKey(t, key),
			Kind: k,
		},
		Checksum: checksum,
	}
}

func TestListOutOfOrderFlagsUnappliedMigrationBelowMaxApplied(t *testing.T) {
	defined := []migration.ScriptContent{
		sc(t, "20250101_000000", "up", 1),
		sc(t, "20250103_000000", "up", 2),
	}
	executed := planner.Executed{
		mustKey(t, "20250102_000000"): migration.Execution{Key: mustKey(t, "20250102_000000")},
	}

	v := planner.Verify{}
	out := v.ListOutOfOrder(defined, executed)
	require.Len(t, out, 1)
	assert.Equal(t, "20250101_000000", out[0].Key.String())
	assert.Equal(t, migration.ProblemOutOfOrder, out[0].Problem.Kind)
}

func TestListOutOfOrderSkippedWhenIgnoreOrder(t *testing.T) {
	defined := []migration.ScriptContent{sc(t, "20250101_000000", "up", 1)}
	executed := planner.Executed{
		mustKey(t, "20250102_000000"): migration.Execution{Key: mustKey(t, "20250102_000000")},
	}
	v := planner.Verify{IgnoreOrder: true}
	assert.Empty(t, v.ListOutOfOrder(defined, executed))
}

func TestListOutOfOrderEmptyWhenNothingExecuted(t *testing.T) {
	defined := []migration.ScriptContent{sc(t, "20250101_000000", "up", 1)}
	v := planner.Verify{}
	assert.Empty(t, v.ListOutOfOrder(defined, planner.Executed{}))
}

func TestListChangedAfterExecutionFlagsChecksumMismatch(t *testing.T) {
	key := mustKey(t, "20250101_000000")
	defined := []migration.ScriptContent{sc(t, "20250101_000000", "up", 999)}
	executed := planner.Executed{
		key: migration.Execution{Key: key, Checksum: 111},
	}

	v := planner.Verify{}
	out := v.ListChangedAfterExecution(defined, executed)
	require.Len(t, out, 1)
	assert.Equal(t, migration.ProblemChecksumMismatch, out[0].Problem.Kind)
	assert.Equal(t, migration.Checksum(999), out[0].Problem.DefinitionChecksum)
	assert.Equal(t, migration.Checksum(111), out[0].Problem.ExecutionChecksum)
}

func TestListChangedAfterExecutionIgnoresBackwardMigrations(t *testing.T) {
	key := mustKey(t, "20250101_000000")
	defined := []migration.ScriptContent{sc(t, "20250101_000000", "down", 999)}
	executed := planner.Executed{
		key: migration.Execution{Key: key, Checksum: 111},
	}
	v := planner.Verify{}
	assert.Empty(t, v.ListChangedAfterExecution(defined, executed))
}

func TestListChangedAfterExecutionSkippedWhenIgnoreChecksums(t *testing.T) {
	key := mustKey(t, "20250101_000000")
	defined := []migration.ScriptContent{sc(t, "20250101_000000", "up", 999)}
	executed := planner.Executed{
		key: migration.Execution{Key: key, Checksum: 111},
	}
	v := planner.Verify{IgnoreChecksums: true}
	assert.Empty(t, v.ListChangedAfterExecution(defined, executed))
}

func TestMigrateListMigrationsToApplySkipsAppliedAndBackward(t *testing.T) {
	applied := mustKey(t, "20250101_000000")
	defined := []migration.ScriptContent{
		sc(t, "20250101_000000", "up", 1),
		sc(t, "20250102_000000", "up", 2),
		sc(t, "20250103_000000", "down", 3),
	}
	executed := planner.Executed{applied: migration.Execution{Key: applied}}

	out := planner.Migrate{}.ListMigrationsToApply(defined, executed)
	require.Len(t, out, 1)
	assert.Equal(t, "20250102_000000", out[0].Key.String())
}

func TestRevertListMigrationsToApplyOnlyAppliedBackwardDescending(t *testing.T) {
	k1 := mustKey(t, "20250101_000000")
	k2 := mustKey(t, "20250102_000000")
	defined := []migration.ScriptContent{
		sc(t, "20250101_000000", "down", 1),
		sc(t, "20250102_000000", "down", 2),
		sc(t, "20250103_000000", "down", 3),
	}
	executed := planner.Executed{
		k1: migration.Execution{Key: k1},
		k2: migration.Execution{Key: k2},
	}

	out := planner.Revert{}.ListMigrationsToApply(defined, executed)
	require.Len(t, out, 2)
	assert.Equal(t, "20250102_000000", out[0].Key.String())
	assert.Equal(t, "20250101_000000", out[1].Key.String())
}
