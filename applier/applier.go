// Package applier runs a single migration script inside a database
// transaction, using the literal envelope the ledger's rank tracking
// depends on.
package applier

import (
	"context"
	"fmt"
	"time"

	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/ports"
)

// Clock abstracts wall-clock reads so applied_at/execution_time are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Applier executes ApplicableMigrations against a ports.Conn.
type Applier struct {
	Conn  ports.Conn
	Table string
	Clock Clock
}

// New builds an Applier. clock may be nil, in which case time.Now is used.
func New(conn ports.Conn, table string, clock Clock) *Applier {
	return &Applier{Conn: conn, Table: table, Clock: clock}
}

func (a *Applier) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock.Now()
}

// ApplyForward runs m's script wrapped in a transaction whose final
// statement reads back the current max applied_rank, so the caller
// can assign rank = max_rank + 1 without a second round trip. On any
// statement failure the database rolls the transaction back and this
// returns a *migrateerr.ScriptError; no Execution is produced.
func (a *Applier) ApplyForward(ctx context.Context, m migration.ApplicableMigration, appliedBy string) (migration.Execution, error) {
	start := a.now()

	envelope := fmt.Sprintf(
		"BEGIN TRANSACTION;\n%s\nCOMMIT TRANSACTION;\nRETURN SELECT math::max(applied_rank) AS max_rank FROM %s GROUP ALL;",
		m.Script, a.Table,
	)

	resp, err := a.Conn.Query(ctx, envelope, nil)
	if err != nil {
		return migration.Execution{}, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	if errs := resp.TakeErrors(); len(errs) > 0 {
		return migration.Execution{}, &migrateerr.ScriptError{Statements: errs}
	}

	var rankRows []struct {
		MaxRank *int64 `json:"max_rank"`
	}
	if err := resp.Take(resp.Count()-1, &rankRows); err != nil {
		return migration.Execution{}, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}

	var maxRank int64
	if len(rankRows) > 0 && rankRows[0].MaxRank != nil {
		maxRank = *rankRows[0].MaxRank
	}

	return migration.Execution{
		Key:           m.Key,
		AppliedRank:   maxRank + 1,
		AppliedBy:     appliedBy,
		AppliedAt:     start,
		Checksum:      m.Checksum,
		ExecutionTime: a.now().Sub(start),
	}, nil
}

// ApplyBackward runs m's (Down-kind) script in the same transactional
// envelope, without the rank-read tail. The caller deletes the
// matching ledger row after a successful call.
func (a *Applier) ApplyBackward(ctx context.Context, m migration.ApplicableMigration, revertedBy string) (migration.Reversion, error) {
	start := a.now()

	envelope := fmt.Sprintf("BEGIN TRANSACTION;\n%s\nCOMMIT TRANSACTION;", m.Script)

	resp, err := a.Conn.Query(ctx, envelope, nil)
	if err != nil {
		return migration.Reversion{}, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	if errs := resp.TakeErrors(); len(errs) > 0 {
		return migration.Reversion{}, &migrateerr.ScriptError{Statements: errs}
	}

	return migration.Reversion{
		Key:           m.Key,
		RevertedBy:    revertedBy,
		RevertedAt:    start,
		ExecutionTime: a.now().Sub(start),
	}, nil
}
