// Package migrateerr is the closed error taxonomy shared by every
// layer of the migration engine. Callers use errors.Is/errors.As
// rather than string matching.
package migrateerr

import (
	"errors"
	"fmt"

	"github.com/aatuh/surreal-migrate/migration"
)

// Definition errors, from parsing a filename.
var (
	ErrInvalidFilename     = errors.New("migrateerr: invalid filename")
	ErrAmbiguousDirection  = errors.New("migrateerr: both .up. and .down. present in filename")
	ErrMissingDate         = errors.New("migrateerr: filename is shorter than the date prefix")
	ErrInvalidDate         = errors.New("migrateerr: malformed date in filename")
	ErrMissingTime         = errors.New("migrateerr: filename is shorter than the time prefix")
	ErrInvalidTime         = errors.New("migrateerr: malformed time in filename")
	ErrNoFilename          = errors.New("migrateerr: path has no filename component")
	ErrInvalidUTF8Char     = errors.New("migrateerr: path is not valid UTF-8")
	ErrBaselineNotEmitable = errors.New("migrateerr: a Baseline migration cannot be emitted as a filename")
)

// I/O errors.
var (
	ErrScanningDirectory        = errors.New("migrateerr: scanning migrations directory")
	ErrReadingMigrationFile     = errors.New("migrateerr: reading migration script file")
	ErrCreatingMigrationsFolder = errors.New("migrateerr: creating migrations folder")
	ErrCreatingScriptFile       = errors.New("migrateerr: creating migration script file")
)

// Configuration errors.
var (
	ErrConfiguration = errors.New("migrateerr: invalid configuration")
	ErrFilePattern   = errors.New("migrateerr: invalid exclude pattern")
)

// Database errors.
var (
	ErrDBQuery                  = errors.New("migrateerr: database query failed")
	ErrFetchingTableDefinitions = errors.New("migrateerr: fetching table definitions")
)

// ExecutionNotInserted signals a migration whose script succeeded but
// whose ledger row failed to insert: the schema changed but no row
// records it. Fatal; the runner halts the batch.
type ExecutionNotInserted struct{ Key migration.Key }

func (e *ExecutionNotInserted) Error() string {
	return fmt.Sprintf("migrateerr: execution not inserted for key %s", e.Key)
}

// ExecutionNotDeleted signals a revert whose ledger row could not be
// removed because it was already absent.
type ExecutionNotDeleted struct{ Key migration.Key }

func (e *ExecutionNotDeleted) Error() string {
	return fmt.Sprintf("migrateerr: execution not deleted for key %s", e.Key)
}

// ScriptError is DbScript: a map of statement index to error message,
// returned when one or more statements inside a transaction fail.
type ScriptError struct {
	Statements map[int]string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("migrateerr: script failed at %d statement(s)", len(e.Statements))
}

// ChangedAfterExecution wraps the list of checksum-mismatch problems
// found during a pre-migrate verification.
type ChangedAfterExecution struct {
	Problems []migration.ProblematicMigration
}

func (e *ChangedAfterExecution) Error() string {
	return fmt.Sprintf("migrateerr: %d migration(s) changed after execution", len(e.Problems))
}

// OutOfOrder wraps the list of out-of-order problems found during a
// pre-migrate verification.
type OutOfOrder struct {
	Problems []migration.ProblematicMigration
}

func (e *OutOfOrder) Error() string {
	return fmt.Sprintf("migrateerr: %d migration(s) out of order", len(e.Problems))
}
