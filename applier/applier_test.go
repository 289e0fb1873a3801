package applier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/applier"
	"github.com/aatuh/surreal-migrate/ledger"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/ports/fakeconn"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func mustKey(t *testing.T, s string) migration.Key {
	t.Helper()
	k, err := migration.ParseKey(s)
	require.NoError(t, err)
	return k
}

func TestApplyForwardReturnsExecutionWithAppliedMetadata(t *testing.T) {
	conn := fakeconn.New("root")
	g := ledger.New(conn, "migrations")
	ctx := context.Background()
	require.NoError(t, g.DefineMigrationsTable(ctx))

	clock := fixedClock{t: time.Date(2025, 1, 3, 14, 5, 20, 0, time.UTC)}
	a := applier.New(conn, "migrations", clock)

	m := migration.ApplicableMigration{
		Key:      mustKey(t, "20250103_140520"),
		Kind:     migration.Up,
		Script:   "DEFINE TABLE foo SCHEMAFULL;",
		Checksum: 42,
	}

	exec, err := a.ApplyForward(ctx, m, "root")
	require.NoError(t, err)
	assert.True(t, m.Key.Equal(exec.Key))
	assert.Equal(t, "root", exec.AppliedBy)
	assert.Equal(t, migration.Checksum(42), exec.Checksum)
	assert.Equal(t, clock.t, exec.AppliedAt)
}

func TestApplyForwardPropagatesScriptFailure(t *testing.T) {
	conn := fakeconn.New("root")
	g := ledger.New(conn, "migrations")
	ctx := context.Background()
	require.NoError(t, g.DefineMigrationsTable(ctx))

	conn.FailStatements = map[string]string{"DEFINE TABLE broken SCHEMAFULL;": "boom"}
	a := applier.New(conn, "migrations", nil)

	m := migration.ApplicableMigration{
		Key:    mustKey(t, "20250103_140520"),
		Kind:   migration.Up,
		Script: "DEFINE TABLE broken SCHEMAFULL;",
	}

	_, err := a.ApplyForward(ctx, m, "root")
	assert.Error(t, err)
}

func TestApplyBackwardReturnsReversionWithMetadata(t *testing.T) {
	conn := fakeconn.New("root")
	g := ledger.New(conn, "migrations")
	ctx := context.Background()
	require.NoError(t, g.DefineMigrationsTable(ctx))

	clock := fixedClock{t: time.Date(2025, 1, 3, 14, 5, 20, 0, time.UTC)}
	a := applier.New(conn, "migrations", clock)

	m := migration.ApplicableMigration{
		Key:    mustKey(t, "20250103_140520"),
		Kind:   migration.Down,
		Script: "REMOVE TABLE foo;",
	}

	rev, err := a.ApplyBackward(ctx, m, "root")
	require.NoError(t, err)
	assert.True(t, m.Key.Equal(rev.Key))
	assert.Equal(t, "root", rev.RevertedBy)
	assert.Equal(t, clock.t, rev.RevertedAt)
}

func TestApplyBackwardPropagatesScriptFailure(t *testing.T) {
	conn := fakeconn.New("root")
	g := ledger.New(conn, "migrations")
	ctx := context.Background()
	require.NoError(t, g.DefineMigrationsTable(ctx))

	conn.FailStatements = map[string]string{"REMOVE TABLE foo;": "boom"}
	a := applier.New(conn, "migrations", nil)

	m := migration.ApplicableMigration{
		Key:    mustKey(t, "20250103_140520"),
		Kind:   migration.Down,
		Script: "REMOVE TABLE foo;",
	}

	_, err := a.ApplyBackward(ctx, m, "root")
	assert.Error(t, err)
}
