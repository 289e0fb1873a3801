// Package planner implements the three pure, stateless planning
// predicates: Verify (problem detection), Migrate (forward plan), and
// Revert (backward plan). None of them touch the database or the
// filesystem; they operate entirely on (defined, executed) inputs
// already loaded by the caller.
package planner

import (
	"sort"

	"github.com/aatuh/surreal-migrate/migration"
)

// Executed maps a migration Key to its ledger Execution.
type Executed map[migration.Key]migration.Execution

// Verify bundles the two consistency checks. Either may be skipped
// via the Ignore* flags, matching RunnerConfig's ignore_checksums and
// ignore_order.
type Verify struct {
	IgnoreChecksums bool
	IgnoreOrder     bool
}

// ListOutOfOrder flags every defined migration whose key is less than
// the maximum applied key yet is itself unapplied. Output preserves
// the input order of defined.
func (v Verify) ListOutOfOrder(defined []migration.ScriptContent, executed Executed) []migration.ProblematicMigration {
	if v.IgnoreOrder || len(executed) == 0 {
		return nil
	}
	last := maxKey(executed)

	var out []migration.ProblematicMigration
	for _, m := range defined {
		if _, ok := executed[m.Key]; ok {
			continue
		}
		if m.Key.Before(last) {
			out = append(out, migration.ProblematicMigration{
				Key:        m.Key,
				Kind:       m.Kind,
				ScriptPath: m.ScriptPath,
				Problem: migration.Problem{
					Kind:           migration.ProblemOutOfOrder,
					LastAppliedKey: last,
				},
			})
		}
	}
	return out
}

// ListChangedAfterExecution flags every forward-kind defined migration
// whose checksum no longer matches its recorded Execution.
func (v Verify) ListChangedAfterExecution(defined []migration.ScriptContent, executed Executed) []migration.ProblematicMigration {
	if v.IgnoreChecksums {
		return nil
	}

	var out []migration.ProblematicMigration
	for _, m := range defined {
		if !m.Kind.Forward() {
			continue
		}
		exec, ok := executed[m.Key]
		if !ok {
			continue
		}
		if exec.Checksum != m.Checksum {
			out = append(out, migration.ProblematicMigration{
				Key:        m.Key,
				Kind:       m.Kind,
				ScriptPath: m.ScriptPath,
				Problem: migration.Problem{
					Kind:               migration.ProblemChecksumMismatch,
					DefinitionChecksum: m.Checksum,
					ExecutionChecksum:  exec.Checksum,
				},
			})
		}
	}
	return out
}

// Migrate selects forward migrations not yet applied.
type Migrate struct{}

// ListMigrationsToApply yields, in the input order of defined, every
// forward-kind migration whose key is absent from executed.
func (Migrate) ListMigrationsToApply(defined []migration.ScriptContent, executed Executed) []migration.ApplicableMigration {
	var out []migration.ApplicableMigration
	for _, m := range defined {
		if !m.Kind.Forward() {
			continue
		}
		if _, ok := executed[m.Key]; ok {
			continue
		}
		out = append(out, toApplicable(m))
	}
	return out
}

// Revert selects backward migrations whose forward counterpart is
// recorded as applied.
type Revert struct{}

// ListMigrationsToApply yields every backward-kind migration whose key
// is present in executed, sorted descending by key (most recent
// first) — the order the runner actually applies reverts in, made
// explicit here rather than left to the caller to reverse.
func (Revert) ListMigrationsToApply(defined []migration.ScriptContent, executed Executed) []migration.ApplicableMigration {
	var out []migration.ApplicableMigration
	for _, m := range defined {
		if !m.Kind.Backward() {
			continue
		}
		if _, ok := executed[m.Key]; !ok {
			continue
		}
		out = append(out, toApplicable(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Key.Before(out[i].Key)
	})
	return out
}

func toApplicable(m migration.ScriptContent) migration.ApplicableMigration {
	return migration.ApplicableMigration{
		Key:      m.Key,
		Kind:     m.Kind,
		Script:   m.Content,
		Checksum: m.Checksum,
	}
}

func maxKey(executed Executed) migration.Key {
	var max migration.Key
	first := true
	for k := range executed {
		if first || k.After(max) {
			max = k
			first = false
		}
	}
	return max
}
