// Package runner orchestrates the scanner, ledger, planner, and
// applier into the user-visible operations: migrate, migrate_to,
// revert, revert_to, verify_checks, list_defined_migrations, and
// list_applied_migrations.
package runner

import (
	"context"

	"github.com/aatuh/surreal-migrate/applier"
	"github.com/aatuh/surreal-migrate/checksum"
	"github.com/aatuh/surreal-migrate/ledger"
	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/planner"
	"github.com/aatuh/surreal-migrate/ports"
	"github.com/aatuh/surreal-migrate/scanner"
)

// Config mirrors the original's RunnerConfig.
type Config struct {
	MigrationsFolder string
	MigrationsTable  string
	IgnoreChecksums  bool
	IgnoreOrder      bool
	ExcludedFiles    string
}

// DefaultMigrationsFolder and DefaultMigrationsTable match the
// original's module-level defaults.
const (
	DefaultMigrationsFolder = "migrations"
	DefaultMigrationsTable  = "migrations"
)

// DefaultConfig returns a Config with the original's defaults.
func DefaultConfig() Config {
	return Config{
		MigrationsFolder: DefaultMigrationsFolder,
		MigrationsTable:  DefaultMigrationsTable,
	}
}

// Runner ties the Config to a ports.Conn, a logger, a clock, and an
// identity, and exposes the high-level migration operations.
type Runner struct {
	cfg       Config
	conn      ports.Conn
	log       ports.Logger
	clock     applier.Clock
	runID     string
	appliedBy string
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithLogger attaches a structured logger; every state transition is
// logged through it, tagged with the run's RunID.
func WithLogger(log ports.Logger) Option { return func(r *Runner) { r.log = log } }

// WithClock injects a deterministic clock for tests.
func WithClock(c applier.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithRunID attaches a correlation ID to every log line this run emits.
func WithRunID(id string) Option { return func(r *Runner) { r.runID = id } }

// New builds a Runner. appliedBy is the authenticated identity used
// for Execution.AppliedBy and Reversion.RevertedBy; it is never
// queried from conn itself.
func New(cfg Config, conn ports.Conn, appliedBy string, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, conn: conn, appliedBy: appliedBy}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) logf(msg string, kv ...any) {
	if r.log == nil {
		return
	}
	kv = append([]any{"run_id", r.runID}, kv...)
	r.log.Info(msg, kv...)
}

func (r *Runner) gateway() *ledger.Gateway { return ledger.New(r.conn, r.cfg.MigrationsTable) }

func (r *Runner) apply() *applier.Applier {
	return applier.New(r.conn, r.cfg.MigrationsTable, r.clock)
}

// ensureTable creates the migrations table if it is missing. Called
// before any writable operation.
func (r *Runner) ensureTable(ctx context.Context) error {
	g := r.gateway()
	info, err := g.FindMigrationsTableInfo(ctx)
	if err != nil {
		return err
	}
	switch info.State {
	case migration.NoTables, migration.Missing:
		r.logf("creating migrations table", "table", r.cfg.MigrationsTable)
		return g.DefineMigrationsTable(ctx)
	default:
		return nil
	}
}

func (r *Runner) scanDefined() ([]migration.ScriptContent, error) {
	s, err := scanner.New(r.cfg.MigrationsFolder, r.cfg.ExcludedFiles)
	if err != nil {
		return nil, err
	}
	defs, err := s.ScanSortedByKey()
	if err != nil {
		return nil, err
	}
	return scanner.ReadAll(defs, checksum.Hash)
}

func (r *Runner) verify(defined []migration.ScriptContent, executed planner.Executed) []migration.ProblematicMigration {
	v := planner.Verify{IgnoreChecksums: r.cfg.IgnoreChecksums, IgnoreOrder: r.cfg.IgnoreOrder}
	problems := v.ListChangedAfterExecution(defined, executed)
	problems = append(problems, v.ListOutOfOrder(defined, executed)...)
	return problems
}

// Migrate applies every forward migration not yet executed, in
// ascending key order, stopping at the first failure.
func (r *Runner) Migrate(ctx context.Context) (Migrated, error) {
	return r.migrateUpTo(ctx, nil)
}

// MigrateTo applies forward migrations up to and including maxKey.
func (r *Runner) MigrateTo(ctx context.Context, maxKey migration.Key) (Migrated, error) {
	return r.migrateUpTo(ctx, &maxKey)
}

func (r *Runner) migrateUpTo(ctx context.Context, maxKey *migration.Key) (Migrated, error) {
	if err := r.ensureTable(ctx); err != nil {
		return Migrated{}, err
	}

	defined, err := r.scanDefined()
	if err != nil {
		return Migrated{}, err
	}
	hasForward := false
	for _, m := range defined {
		if m.Kind.Forward() {
			hasForward = true
			break
		}
	}
	if !hasForward {
		return Migrated{State: MigratedNoForwardMigrationsFound}, nil
	}

	g := r.gateway()
	executed, err := g.SelectAllExecutions(ctx)
	if err != nil {
		return Migrated{}, err
	}

	if problems := r.verify(defined, executed); len(problems) > 0 {
		return Migrated{}, classifyProblems(problems)
	}

	plan := (planner.Migrate{}).ListMigrationsToApply(defined, executed)
	if maxKey != nil {
		truncated := plan[:0]
		for _, m := range plan {
			if m.Key.After(*maxKey) {
				break
			}
			truncated = append(truncated, m)
		}
		plan = truncated
	}
	if len(plan) == 0 {
		return Migrated{State: MigratedNothing}, nil
	}

	a := r.apply()
	var lastKey migration.Key
	for _, m := range plan {
		r.logf("applying migration", "key", m.Key.String(), "kind", m.Kind.String())
		exec, err := a.ApplyForward(ctx, m, r.appliedBy)
		if err != nil {
			r.logf("migration failed", "key", m.Key.String(), "err", err.Error())
			return Migrated{}, err
		}
		mig := definedMigration(defined, m.Key, m.Kind)
		if err := g.InsertMigrationExecution(ctx, mig, exec); err != nil {
			r.logf("execution not recorded", "key", m.Key.String(), "err", err.Error())
			return Migrated{}, err
		}
		r.logf("migration applied", "key", m.Key.String(), "rank", exec.AppliedRank)
		lastKey = m.Key
	}

	return Migrated{State: MigratedUpTo, UpToKey: lastKey}, nil
}

// Revert reverts every backward migration whose forward counterpart
// is applied, most recent first, stopping at the first failure.
func (r *Runner) Revert(ctx context.Context) (Reverted, error) {
	return r.revertTo(ctx, nil)
}

// RevertTo reverts backward migrations until the ledger's remaining
// maximum key is minRemainingKey or lower.
func (r *Runner) RevertTo(ctx context.Context, minRemainingKey migration.Key) (Reverted, error) {
	return r.revertTo(ctx, &minRemainingKey)
}

func (r *Runner) revertTo(ctx context.Context, minRemainingKey *migration.Key) (Reverted, error) {
	if err := r.ensureTable(ctx); err != nil {
		return Reverted{}, err
	}

	defined, err := r.scanDefined()
	if err != nil {
		return Reverted{}, err
	}

	g := r.gateway()
	executed, err := g.SelectAllExecutions(ctx)
	if err != nil {
		return Reverted{}, err
	}
	if len(executed) == 0 {
		return Reverted{State: RevertedNoBackwardMigrationsFound}, nil
	}

	plan := (planner.Revert{}).ListMigrationsToApply(defined, executed)
	if minRemainingKey != nil {
		truncated := plan[:0]
		for _, m := range plan {
			if !m.Key.After(*minRemainingKey) {
				break
			}
			truncated = append(truncated, m)
		}
		plan = truncated
	}
	if len(plan) == 0 {
		return Reverted{State: RevertedNothing}, nil
	}

	a := r.apply()
	reverted := make(map[migration.Key]struct{}, len(plan))
	remaining := len(executed) - len(plan)
	for _, m := range plan {
		r.logf("reverting migration", "key", m.Key.String())
		rev, err := a.ApplyBackward(ctx, m, r.appliedBy)
		if err != nil {
			r.logf("revert failed", "key", m.Key.String(), "err", err.Error())
			return Reverted{}, err
		}
		if err := g.DeleteMigrationExecution(ctx, rev); err != nil {
			r.logf("execution not deleted", "key", m.Key.String(), "err", err.Error())
			return Reverted{}, err
		}
		r.logf("migration reverted", "key", m.Key.String())
		reverted[m.Key] = struct{}{}
	}

	if remaining == 0 {
		return Reverted{State: RevertedCompletely}, nil
	}

	// DownToKey is the greatest key still applied after this batch, not
	// the last key this batch reverted.
	var maxRemainingKey migration.Key
	haveMax := false
	for k := range executed {
		if _, wasReverted := reverted[k]; wasReverted {
			continue
		}
		if !haveMax || k.After(maxRemainingKey) {
			maxRemainingKey = k
			haveMax = true
		}
	}
	return Reverted{State: RevertedDownTo, DownToKey: maxRemainingKey}, nil
}

// VerifyChecks runs whichever of {Checksum, Order} is requested.
func (r *Runner) VerifyChecks(ctx context.Context, checks Checks) (Verified, error) {
	defined, err := r.scanDefined()
	if err != nil {
		return Verified{}, err
	}
	if len(defined) == 0 {
		return Verified{State: VerifiedNoMigrationsFound}, nil
	}

	g := r.gateway()
	executed, err := g.SelectAllExecutions(ctx)
	if err != nil {
		return Verified{}, err
	}

	v := planner.Verify{
		IgnoreChecksums: !checks.hasChecksum(),
		IgnoreOrder:     !checks.hasOrder(),
	}
	var problems []migration.ProblematicMigration
	problems = append(problems, v.ListChangedAfterExecution(defined, executed)...)
	problems = append(problems, v.ListOutOfOrder(defined, executed)...)

	if len(problems) == 0 {
		return Verified{State: VerifiedNoProblemsFound}, nil
	}
	return Verified{State: VerifiedFoundProblems, Problems: problems}, nil
}

// ListDefinedMigrations scans the directory, filtering by kind when
// predicate is non-nil.
func (r *Runner) ListDefinedMigrations(predicate func(migration.Kind) bool) ([]migration.Migration, error) {
	s, err := scanner.New(r.cfg.MigrationsFolder, r.cfg.ExcludedFiles)
	if err != nil {
		return nil, err
	}
	defs, err := s.ScanSortedByKey()
	if err != nil {
		return nil, err
	}
	if predicate == nil {
		return defs, nil
	}
	out := defs[:0]
	for _, m := range defs {
		if predicate(m.Kind) {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListAppliedMigrations loads the ledger, ascending by key.
func (r *Runner) ListAppliedMigrations(ctx context.Context) ([]migration.Execution, error) {
	return r.gateway().SelectAllExecutionsSortedByKey(ctx)
}

func classifyProblems(problems []migration.ProblematicMigration) error {
	var checksumProblems, orderProblems []migration.ProblematicMigration
	for _, p := range problems {
		switch p.Problem.Kind {
		case migration.ProblemChecksumMismatch:
			checksumProblems = append(checksumProblems, p)
		case migration.ProblemOutOfOrder:
			orderProblems = append(orderProblems, p)
		}
	}
	if len(checksumProblems) > 0 {
		return &migrateerr.ChangedAfterExecution{Problems: checksumProblems}
	}
	return &migrateerr.OutOfOrder{Problems: orderProblems}
}

func definedMigration(defined []migration.ScriptContent, key migration.Key, kind migration.Kind) migration.Migration {
	for _, m := range defined {
		if m.Key.Equal(key) && m.Kind == kind {
			return m.Migration
		}
	}
	return migration.Migration{Key: key, Kind: kind}
}
