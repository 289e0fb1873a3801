package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/ports/fakeconn"
	"github.com/aatuh/surreal-migrate/runner"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newConfig(dir string) runner.Config {
	return runner.Config{MigrationsFolder: dir, MigrationsTable: "migrations"}
}

func TestMigrateAppliesForwardMigrationsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250102_000000_second.up.surql", "DEFINE TABLE b SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")

	result, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runner.MigratedUpTo, result.State)
	assert.Equal(t, "20250102_000000", result.UpToKey.String())

	applied, err := r.ListAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}

func TestMigrateIsIdempotentWhenNothingToApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.Migrate(ctx)
	require.NoError(t, err)

	result, err := r.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, runner.MigratedNothing, result.State)
}

func TestMigrateWithNoDefinedMigrations(t *testing.T) {
	dir := t.TempDir()
	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")

	result, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runner.MigratedNoForwardMigrationsFound, result.State)
}

func TestMigrateToStopsAtRequestedKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250102_000000_second.up.surql", "DEFINE TABLE b SCHEMAFULL;")
	writeFile(t, dir, "20250103_000000_third.up.surql", "DEFINE TABLE c SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	target, err := migration.ParseKey("20250102_000000")
	require.NoError(t, err)

	result, err := r.MigrateTo(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, runner.MigratedUpTo, result.State)
	assert.Equal(t, "20250102_000000", result.UpToKey.String())

	applied, err := r.ListAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}

func TestRevertReversesMostRecentFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250101_000000_first.down.surql", "REMOVE TABLE a;")
	writeFile(t, dir, "20250102_000000_second.up.surql", "DEFINE TABLE b SCHEMAFULL;")
	writeFile(t, dir, "20250102_000000_second.down.surql", "REMOVE TABLE b;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.Migrate(ctx)
	require.NoError(t, err)

	result, err := r.Revert(ctx)
	require.NoError(t, err)
	assert.Equal(t, runner.RevertedCompletely, result.State)

	applied, err := r.ListAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRevertToReportsGreatestRemainingKeyNotLastReverted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_a.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250101_000000_a.down.surql", "REMOVE TABLE a;")
	writeFile(t, dir, "20250102_000000_b.up.surql", "DEFINE TABLE b SCHEMAFULL;")
	writeFile(t, dir, "20250102_000000_b.down.surql", "REMOVE TABLE b;")
	writeFile(t, dir, "20250103_000000_c.up.surql", "DEFINE TABLE c SCHEMAFULL;")
	writeFile(t, dir, "20250103_000000_c.down.surql", "REMOVE TABLE c;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.Migrate(ctx)
	require.NoError(t, err)

	a, err := migration.ParseKey("20250101_000000")
	require.NoError(t, err)

	// revert_to(A) applies Downs for C then B; the greatest key still
	// applied afterward is A, not B (the last migration reverted).
	result, err := r.RevertTo(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, runner.RevertedDownTo, result.State)
	assert.Equal(t, "20250101_000000", result.DownToKey.String())

	applied, err := r.ListAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "20250101_000000", applied[0].Key.String())
}

func TestRevertWithNothingAppliedReportsNoBackwardMigrationsFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.down.surql", "REMOVE TABLE a;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")

	result, err := r.Revert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runner.RevertedNoBackwardMigrationsFound, result.State)
}

func TestVerifyChecksFindsChecksumMismatchAfterScriptEdit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.Migrate(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL; DEFINE FIELD x ON a TYPE string;")

	result, err := r.VerifyChecks(ctx, runner.AllChecks())
	require.NoError(t, err)
	assert.Equal(t, runner.VerifiedFoundProblems, result.State)
	require.Len(t, result.Problems, 1)
	assert.Equal(t, migration.ProblemChecksumMismatch, result.Problems[0].Problem.Kind)
}

func TestVerifyChecksNoProblemsFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.Migrate(ctx)
	require.NoError(t, err)

	result, err := r.VerifyChecks(ctx, runner.AllChecks())
	require.NoError(t, err)
	assert.Equal(t, runner.VerifiedNoProblemsFound, result.State)
}

func TestMigrateRejectsChangedAfterExecution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250102_000000_second.up.surql", "DEFINE TABLE b SCHEMAFULL;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")
	ctx := context.Background()

	_, err := r.MigrateTo(ctx, func() migration.Key {
		k, _ := migration.ParseKey("20250101_000000")
		return k
	}())
	require.NoError(t, err)

	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL; DEFINE FIELD y ON a TYPE string;")

	_, err = r.Migrate(ctx)
	var changed *migrateerr.ChangedAfterExecution
	assert.ErrorAs(t, err, &changed)
}

func TestListDefinedMigrationsFiltersByPredicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250101_000000_first.down.surql", "REMOVE TABLE a;")

	conn := fakeconn.New("root")
	r := runner.New(newConfig(dir), conn, "root")

	forward, err := r.ListDefinedMigrations(migration.Kind.Forward)
	require.NoError(t, err)
	assert.Len(t, forward, 1)
	assert.Equal(t, migration.Up, forward[0].Kind)
}
