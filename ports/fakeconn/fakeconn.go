// Package fakeconn is an in-memory ports.Conn used by the test
// suite. It is not a
// SurrealDB client: it interprets only the small set of statement
// shapes this repository's ledger and applier packages generate
// (DEFINE TABLE / DEFINE FIELD / DEFINE INDEX, CREATE ... CONTENT {},
// SELECT, DELETE ... RETURN BEFORE, and arbitrary opaque script
// statements between BEGIN/COMMIT TRANSACTION).
package fakeconn

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aatuh/surreal-migrate/ports"
)

// Conn is a single-namespace in-memory database holding any number of
// tables. Script
// statements inside BEGIN/COMMIT TRANSACTION that are not recognized
// are executed against a registered ScriptRunner, or simply ignored
// if none is set (useful for tests that only exercise the ledger).
type Conn struct {
	mu        sync.Mutex
	username  string
	tables    map[string][]map[string]any // table name -> rows
	nextRank  map[string]int64
	ScriptRunner func(statement string) error
	FailStatements map[string]string // exact-statement -> error message, for injecting script failures
}

// New builds an empty fake connection authenticated as username.
func New(username string) *Conn {
	return &Conn{
		username: username,
		tables:   make(map[string][]map[string]any),
		nextRank: make(map[string]int64),
	}
}

func (c *Conn) Username(ctx context.Context) (string, error) { return c.username, nil }

func (c *Conn) InfoForDB(ctx context.Context) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.tables))
	for name := range c.tables {
		out[name] = fmt.Sprintf("DEFINE TABLE %s SCHEMAFULL COMMENT 'version:1.0'", name)
	}
	return out, nil
}

func (c *Conn) Query(ctx context.Context, statement string, vars map[string]any) (ports.QueryResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp := responseImpl{errs: make(map[int]string)}
	statements := splitStatements(statement)

	for i, stmt := range statements {
		if msg, ok := c.FailStatements[stmt]; ok {
			resp.errs[i] = msg
			resp.results = append(resp.results, nil)
			continue
		}
		result, err := c.execOne(stmt, vars)
		if err != nil {
			resp.errs[i] = err.Error()
			resp.results = append(resp.results, nil)
			continue
		}
		resp.results = append(resp.results, result)
	}
	return resp, nil
}

func splitStatements(script string) []string {
	var out []string
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func tableNameFrom(table string) string {
	return strings.TrimSuffix(strings.TrimPrefix(table, "`"), "`")
}

func (c *Conn) execOne(stmt string, vars map[string]any) (any, error) {
	switch {
	case strings.HasPrefix(stmt, "BEGIN TRANSACTION") || strings.HasPrefix(stmt, "COMMIT TRANSACTION"):
		return nil, nil
	case strings.HasPrefix(stmt, "DEFINE TABLE"):
		name := fields(stmt)[2]
		if _, ok := c.tables[name]; ok {
			return nil, fmt.Errorf("table %s already exists", name)
		}
		c.tables[name] = []map[string]any{}
		return nil, nil
	case strings.HasPrefix(stmt, "DEFINE FIELD"), strings.HasPrefix(stmt, "DEFINE INDEX"):
		return nil, nil
	case strings.HasPrefix(stmt, "CREATE"):
		return c.create(stmt, vars)
	case (strings.HasPrefix(stmt, "SELECT") || strings.HasPrefix(stmt, "RETURN SELECT")) &&
		strings.Contains(stmt, "math::max"):
		return c.maxRank(stmt)
	case strings.HasPrefix(stmt, "SELECT key FROM"):
		return c.maxKeyRow(stmt)
	case strings.HasPrefix(stmt, "SELECT"):
		return c.selectAll(stmt)
	case strings.HasPrefix(stmt, "DELETE"):
		return c.delete(stmt, vars)
	default:
		if c.ScriptRunner != nil {
			return nil, c.ScriptRunner(stmt)
		}
		return nil, nil
	}
}

func fields(s string) []string { return strings.Fields(s) }

func (c *Conn) create(stmt string, vars map[string]any) (any, error) {
	f := fields(stmt)
	name := tableNameFrom(f[1])
	for _, row := range c.tables[name] {
		if row["key"] == vars["key"] {
			return nil, fmt.Errorf("record already exists for key %v", vars["key"])
		}
	}
	row := make(map[string]any, len(vars))
	for k, v := range vars {
		row[k] = v
	}
	c.tables[name] = append(c.tables[name], row)
	if rank, ok := vars["applied_rank"].(int64); ok && rank > c.nextRank[name] {
		c.nextRank[name] = rank
	}
	return []map[string]any{row}, nil
}

func (c *Conn) maxRank(stmt string) (any, error) {
	name := tableOf(stmt, "FROM")
	var max int64
	for _, row := range c.tables[name] {
		if r, ok := row["applied_rank"].(int64); ok && r > max {
			max = r
		}
	}
	var ptr *int64
	if max > 0 {
		ptr = &max
	}
	return []map[string]any{{"max_rank": ptr}}, nil
}

func (c *Conn) maxKeyRow(stmt string) (any, error) {
	name := tableOf(stmt, "FROM")
	rows := append([]map[string]any{}, c.tables[name]...)
	sort.Slice(rows, func(i, j int) bool {
		ri, _ := rows[i]["applied_rank"].(int64)
		rj, _ := rows[j]["applied_rank"].(int64)
		return ri > rj
	})
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}
	return []map[string]any{{"key": rows[0]["key"]}}, nil
}

func (c *Conn) selectAll(stmt string) (any, error) {
	name := tableOf(stmt, "FROM")
	return append([]map[string]any{}, c.tables[name]...), nil
}

func (c *Conn) delete(stmt string, vars map[string]any) (any, error) {
	name := tableNameFrom(fields(stmt)[1])
	rows := c.tables[name]
	key := vars["key"]
	for i, row := range rows {
		if row["key"] == key {
			c.tables[name] = append(rows[:i], rows[i+1:]...)
			return []map[string]any{row}, nil
		}
	}
	return []map[string]any{}, nil
}

func tableOf(stmt, keyword string) string {
	idx := strings.Index(stmt, keyword)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(stmt[idx+len(keyword):])
	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSuffix(parts[0], ";")
}

type responseImpl struct {
	results []any
	errs    map[int]string
}

func (r responseImpl) Take(i int, dest any) error {
	if i < 0 || i >= len(r.results) {
		return fmt.Errorf("fakeconn: no result at statement index %d", i)
	}
	raw, err := json.Marshal(r.results[i])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (r responseImpl) TakeErrors() map[int]string { return r.errs }

func (r responseImpl) Count() int { return len(r.results) }

var _ ports.Conn = (*Conn)(nil)
