package runner

import "github.com/aatuh/surreal-migrate/migration"

// MigratedState is the discriminant of a Migrated result.
type MigratedState int

const (
	MigratedNothing MigratedState = iota
	MigratedUpTo
	MigratedNoForwardMigrationsFound
)

// Migrated is the result of a migrate/migrate_to call.
type Migrated struct {
	State    MigratedState
	UpToKey  migration.Key
}

// RevertedState is the discriminant of a Reverted result.
type RevertedState int

const (
	RevertedNothing RevertedState = iota
	RevertedDownTo
	RevertedCompletely
	RevertedNoBackwardMigrationsFound
)

// Reverted is the result of a revert/revert_to call.
type Reverted struct {
	State     RevertedState
	DownToKey migration.Key
}

// VerifiedState is the discriminant of a Verified result.
type VerifiedState int

const (
	VerifiedNoProblemsFound VerifiedState = iota
	VerifiedFoundProblems
	VerifiedNoMigrationsFound
)

// Verified is the result of a verify_checks call.
type Verified struct {
	State    VerifiedState
	Problems []migration.ProblematicMigration
}

// Check names one of the two independent consistency checks Verify
// can run.
type Check int

const (
	CheckChecksum Check = iota
	CheckOrder
)

// Checks is the set of checks a verify_checks call should run.
type Checks struct {
	checksum bool
	order    bool
}

// AllChecks runs both the checksum and order checks.
func AllChecks() Checks { return Checks{checksum: true, order: true} }

// OnlyChecks runs exactly the named checks.
func OnlyChecks(checks ...Check) Checks {
	var c Checks
	for _, ch := range checks {
		switch ch {
		case CheckChecksum:
			c.checksum = true
		case CheckOrder:
			c.order = true
		}
	}
	return c
}

func (c Checks) hasChecksum() bool { return c.checksum }
func (c Checks) hasOrder() bool    { return c.order }
