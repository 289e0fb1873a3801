// Package ledger is the gateway between the migration core and the
// migrations table stored in the target database. It never generates
// a transaction itself (that is the applier's job); it issues plain
// reads, inserts, and deletes against ports.Conn.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/planner"
	"github.com/aatuh/surreal-migrate/ports"
)

const tableVersion = "1.0"
const tableVersionKey = "version:"

// Gateway wraps a ports.Conn with the migrations-table operations.
type Gateway struct {
	Conn  ports.Conn
	Table string
}

// New builds a Gateway for the named migrations table.
func New(conn ports.Conn, table string) *Gateway {
	return &Gateway{Conn: conn, Table: table}
}

// DefineMigrationsTable creates the schema with the documented column
// set and a table-level COMMENT 'version:<MAJOR.MINOR>'. Fails if the
// table already exists (the caller is expected to have checked
// FindMigrationsTableInfo first).
func (g *Gateway) DefineMigrationsTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`
DEFINE TABLE %s SCHEMAFULL COMMENT 'version:%s' PERMISSIONS FOR select FULL, FOR create, update, delete NONE;
DEFINE FIELD key ON %s TYPE string ASSERT $value != NONE;
DEFINE FIELD applied_rank ON %s TYPE int ASSERT $value != NONE;
DEFINE FIELD title ON %s TYPE string;
DEFINE FIELD kind ON %s TYPE string ASSERT $value INSIDE ['baseline', 'up', 'down'];
DEFINE FIELD script_path ON %s TYPE string;
DEFINE FIELD checksum ON %s TYPE int;
DEFINE FIELD applied_at ON %s TYPE datetime;
DEFINE FIELD applied_by ON %s TYPE string;
DEFINE FIELD execution_time ON %s TYPE duration;
DEFINE INDEX key_idx ON %s COLUMNS key UNIQUE;
`,
		g.Table, tableVersion, g.Table, g.Table, g.Table, g.Table,
		g.Table, g.Table, g.Table, g.Table, g.Table, g.Table)

	resp, err := g.Conn.Query(ctx, stmt, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	if errs := resp.TakeErrors(); len(errs) > 0 {
		return &migrateerr.ScriptError{Statements: errs}
	}
	return nil
}

// FindMigrationsTableInfo introspects the database (an `INFO FOR DB`
// equivalent) to decide whether the migrations table exists, and if
// so, to extract its version comment.
func (g *Gateway) FindMigrationsTableInfo(ctx context.Context) (migration.MigrationsTableInfo, error) {
	tables, err := g.Conn.InfoForDB(ctx)
	if err != nil {
		return migration.MigrationsTableInfo{}, fmt.Errorf("%w: %v", migrateerr.ErrFetchingTableDefinitions, err)
	}
	if len(tables) == 0 {
		return migration.MigrationsTableInfo{State: migration.NoTables}, nil
	}
	def, ok := tables[g.Table]
	if !ok {
		return migration.MigrationsTableInfo{State: migration.Missing}, nil
	}
	defStr, _ := def.(string)
	return migration.MigrationsTableInfo{
		State:      migration.TablePresent,
		Name:       g.Table,
		Version:    extractVersion(defStr),
		Definition: defStr,
	}, nil
}

// extractVersion locates "version:" in the definition string and
// reads up to the next apostrophe, per the original's
// extract_table_definition_version.
func extractVersion(def string) string {
	idx := strings.Index(def, tableVersionKey)
	if idx < 0 {
		return ""
	}
	rest := def[idx+len(tableVersionKey):]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// SelectAllExecutionsSortedByKey loads every ledger row, ascending by key.
func (g *Gateway) SelectAllExecutionsSortedByKey(ctx context.Context) ([]migration.Execution, error) {
	rows, err := g.selectAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key.Before(rows[j].Key) })
	return rows, nil
}

// SelectAllExecutions is the planner-friendly map form of the ledger.
func (g *Gateway) SelectAllExecutions(ctx context.Context) (planner.Executed, error) {
	rows, err := g.selectAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(planner.Executed, len(rows))
	for _, r := range rows {
		out[r.Key] = r
	}
	return out, nil
}

func (g *Gateway) selectAll(ctx context.Context) ([]migration.Execution, error) {
	stmt := fmt.Sprintf("SELECT * FROM %s;", g.Table)
	resp, err := g.Conn.Query(ctx, stmt, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	var rows []executionRow
	if err := resp.Take(0, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	out := make([]migration.Execution, 0, len(rows))
	for _, r := range rows {
		exec, err := r.toExecution()
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	return out, nil
}

// InsertMigrationExecution upserts-creates a new ledger row for a
// forward apply. A duplicate key is a DbQuery error (record already
// exists); the caller is expected to have planned against a fresh
// ledger load, so this should not happen in normal operation.
func (g *Gateway) InsertMigrationExecution(ctx context.Context, m migration.Migration, exec migration.Execution) error {
	stmt := fmt.Sprintf(`CREATE %s CONTENT {
	key: $key, applied_rank: $applied_rank, title: $title, kind: $kind,
	script_path: $script_path, checksum: $checksum, applied_at: $applied_at,
	applied_by: $applied_by, execution_time: $execution_time
};`, g.Table)

	vars := map[string]any{
		"key":            exec.Key.String(),
		"applied_rank":   exec.AppliedRank,
		"title":          m.Title,
		"kind":           m.Kind.String(),
		"script_path":    m.ScriptPath,
		"checksum":       uint32(exec.Checksum),
		"applied_at":     exec.AppliedAt,
		"applied_by":     exec.AppliedBy,
		"execution_time": exec.ExecutionTime.String(),
	}
	resp, err := g.Conn.Query(ctx, stmt, vars)
	if err != nil {
		return fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	if errs := resp.TakeErrors(); len(errs) > 0 {
		return &migrateerr.ExecutionNotInserted{Key: exec.Key}
	}
	var created []executionRow
	if err := resp.Take(0, &created); err != nil || len(created) == 0 {
		return &migrateerr.ExecutionNotInserted{Key: exec.Key}
	}
	return nil
}

// DeleteMigrationExecution removes the ledger row for rev.Key.
// Absence is ExecutionNotDeleted.
func (g *Gateway) DeleteMigrationExecution(ctx context.Context, rev migration.Reversion) error {
	stmt := fmt.Sprintf("DELETE %s WHERE key = $key RETURN BEFORE;", g.Table)
	resp, err := g.Conn.Query(ctx, stmt, map[string]any{"key": rev.Key.String()})
	if err != nil {
		return fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, err)
	}
	var deleted []executionRow
	if err := resp.Take(0, &deleted); err != nil || len(deleted) == 0 {
		return &migrateerr.ExecutionNotDeleted{Key: rev.Key}
	}
	return nil
}

// FindMaxAppliedMigrationKey returns the largest applied key, or the
// zero Key (ok == false) if the ledger is empty.
func (g *Gateway) FindMaxAppliedMigrationKey(ctx context.Context) (k migration.Key, ok bool, err error) {
	stmt := fmt.Sprintf("SELECT key FROM %s ORDER BY applied_rank DESC LIMIT 1;", g.Table)
	resp, qerr := g.Conn.Query(ctx, stmt, nil)
	if qerr != nil {
		return migration.Key{}, false, fmt.Errorf("%w: %v", migrateerr.ErrDBQuery, qerr)
	}
	var rows []struct {
		Key string `json:"key"`
	}
	if err := resp.Take(0, &rows); err != nil || len(rows) == 0 {
		return migration.Key{}, false, nil
	}
	key, perr := migration.ParseKey(rows[0].Key)
	if perr != nil {
		return migration.Key{}, false, perr
	}
	return key, true, nil
}

// executionRow is the wire shape of one ledger row.
type executionRow struct {
	Key           string `json:"key"`
	AppliedRank   int64  `json:"applied_rank"`
	Title         string `json:"title"`
	Kind          string `json:"kind"`
	ScriptPath    string `json:"script_path"`
	Checksum      uint32 `json:"checksum"`
	AppliedAt     time.Time `json:"applied_at"`
	AppliedBy     string `json:"applied_by"`
	ExecutionTime string `json:"execution_time"`
}

func (r executionRow) toExecution() (migration.Execution, error) {
	key, err := migration.ParseKey(r.Key)
	if err != nil {
		return migration.Execution{}, err
	}
	dur, err := time.ParseDuration(r.ExecutionTime)
	if err != nil {
		dur = 0
	}
	return migration.Execution{
		Key:           key,
		AppliedRank:   r.AppliedRank,
		AppliedBy:     r.AppliedBy,
		AppliedAt:     r.AppliedAt,
		Checksum:      migration.Checksum(r.Checksum),
		ExecutionTime: dur,
		Title:         r.Title,
		ScriptPath:    r.ScriptPath,
	}, nil
}
