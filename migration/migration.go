// Package migration defines the core entities shared by every other
// package in this module: the migration key, its kind, and the
// records derived from applying or reverting a script.
package migration

import (
	"fmt"
	"time"
)

// KeyFormat is the reference-time layout used to parse and format a
// migration Key, equivalent to the original's "%Y%m%d_%H%M%S".
const KeyFormat = "20060102_150405"

// Key is the timestamp identity of a migration. Equality and order
// derive entirely from the wrapped time.
type Key struct {
	t time.Time
}

// NewKey builds a Key from a time value, truncated to second
// precision (the wire format carries no finer resolution).
func NewKey(t time.Time) Key {
	return Key{t: t.Truncate(time.Second)}
}

// ParseKey parses a "YYYYMMDD_HHMMSS" string into a Key.
func ParseKey(s string) (Key, error) {
	t, err := time.Parse(KeyFormat, s)
	if err != nil {
		return Key{}, fmt.Errorf("migration: invalid key %q: %w", s, err)
	}
	return Key{t: t}, nil
}

// String formats the Key in its canonical "YYYYMMDD_HHMMSS" form.
func (k Key) String() string { return k.t.Format(KeyFormat) }

// Time returns the underlying timestamp.
func (k Key) Time() time.Time { return k.t }

// Before reports whether k sorts strictly before other.
func (k Key) Before(other Key) bool { return k.t.Before(other.t) }

// After reports whether k sorts strictly after other.
func (k Key) After(other Key) bool { return k.t.After(other.t) }

// Equal reports whether k and other identify the same instant.
func (k Key) Equal(other Key) bool { return k.t.Equal(other.t) }

// IsZero reports whether the Key was never assigned.
func (k Key) IsZero() bool { return k.t.IsZero() }

// Kind distinguishes baseline, forward, and backward migrations.
type Kind int

const (
	// Up is a forward migration derived from a bare or ".up.surql" file.
	Up Kind = iota
	// Down is a backward migration derived from a ".down.surql" file.
	Down
	// Baseline is a forward migration created only through the
	// definition.NewBaseline constructor, never inferred from a filename.
	Baseline
)

// String renders the kind the way it is stored in the ledger.
func (k Kind) String() string {
	switch k {
	case Up:
		return "up"
	case Down:
		return "down"
	case Baseline:
		return "baseline"
	default:
		return "unknown"
	}
}

// Forward reports whether this kind is applied going up (Baseline ∨ Up).
func (k Kind) Forward() bool { return k == Up || k == Baseline }

// Backward reports whether this kind is applied going down (Down).
func (k Kind) Backward() bool { return k == Down }

// Tag is the single byte folded into the checksum to distinguish
// otherwise-identical scripts of different kinds.
func (k Kind) Tag() byte {
	switch k {
	case Baseline:
		return 0x00
	case Up:
		return 0x01
	case Down:
		return 0x02
	default:
		return 0xff
	}
}

// Checksum is a 32-bit CRC over (filename, kind tag, script content).
// Serialized as the decimal of the underlying unsigned integer.
type Checksum uint32

func (c Checksum) String() string { return fmt.Sprintf("%d", uint32(c)) }

// Migration is a parsed, on-disk definition: identity is (Key, Kind).
// Title is cosmetic only.
type Migration struct {
	Key        Key
	Kind       Kind
	Title      string
	ScriptPath string
}

// ScriptContent pairs a Migration with its file content and the
// checksum computed over (filename, kind tag, content).
type ScriptContent struct {
	Migration
	Content  string
	Checksum Checksum
}

// ApplicableMigration is what the transactional applier consumes.
type ApplicableMigration struct {
	Key      Key
	Kind     Kind
	Script   string
	Checksum Checksum
}

// Execution is a row in the migrations ledger recording a forward apply.
type Execution struct {
	Key            Key
	AppliedRank    int64
	AppliedBy      string
	AppliedAt      time.Time
	Checksum       Checksum
	ExecutionTime  time.Duration
	Title          string
	ScriptPath     string
}

// Reversion is the record of a successful backward apply. It is never
// itself stored; it is the trigger to delete the matching Execution row.
type Reversion struct {
	Key           Key
	RevertedBy    string
	RevertedAt    time.Time
	ExecutionTime time.Duration
}

// ProblemKind distinguishes the two families of verification failure.
type ProblemKind int

const (
	ProblemChecksumMismatch ProblemKind = iota
	ProblemOutOfOrder
)

// Problem is the tagged-union payload of a ProblematicMigration.
type Problem struct {
	Kind ProblemKind

	// ChecksumMismatch fields.
	DefinitionChecksum Checksum
	ExecutionChecksum  Checksum

	// OutOfOrder fields.
	LastAppliedKey Key
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemChecksumMismatch:
		return fmt.Sprintf("checksum mismatch: definition=%s execution=%s",
			p.DefinitionChecksum, p.ExecutionChecksum)
	case ProblemOutOfOrder:
		return fmt.Sprintf("out of order: last applied key=%s", p.LastAppliedKey)
	default:
		return "unknown problem"
	}
}

// ProblematicMigration names which on-disk migration a Problem concerns.
type ProblematicMigration struct {
	Key        Key
	Kind       Kind
	ScriptPath string
	Problem    Problem
}

// MigrationsTableInfoState is the discriminant of MigrationsTableInfo.
type MigrationsTableInfoState int

const (
	// NoTables means the database has no tables at all.
	NoTables MigrationsTableInfoState = iota
	// Missing means the database has tables, but not this one.
	Missing
	// TablePresent means the migrations table exists.
	TablePresent
)

// MigrationsTableInfo is the result of introspecting the database for
// the configured migrations table.
type MigrationsTableInfo struct {
	State      MigrationsTableInfoState
	Name       string
	Version    string // empty unless State == TablePresent and a version comment was found
	Definition string
}
