// Package definition parses migration filenames into migration.Migration
// values and emits filenames for newly created migrations, following
// the grammar:
//
//	filename := YYYYMMDD "_" HHMMSS ("_" title)? ext
//	ext      := ".up.surql" | ".down.surql" | ".surql"
package definition

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
)

const (
	scriptExt   = ".surql"
	upScriptExt = ".up.surql"
	downExt     = ".down.surql"

	datePrefixLen = 8  // "YYYYMMDD"
	timePrefixLen = 6  // "HHMMSS"
	dateTimeLen   = datePrefixLen + 1 + timePrefixLen
)

// Parse parses a filename (basename only; the caller supplies the
// surrounding directory separately as scriptPath) into a Migration.
// Baseline is never produced here; it is assigned only via the
// programmatic constructor NewBaseline.
func Parse(dir, filename string) (migration.Migration, error) {
	if filename == "" {
		return migration.Migration{}, migrateerr.ErrNoFilename
	}
	if !utf8.ValidString(filename) {
		return migration.Migration{}, migrateerr.ErrInvalidUTF8Char
	}

	kind, extLen, err := extensionKind(filename)
	if err != nil {
		return migration.Migration{}, err
	}

	stem := filename[:len(filename)-extLen]
	if len(stem) < datePrefixLen {
		return migration.Migration{}, migrateerr.ErrMissingDate
	}
	datePart := stem[:datePrefixLen]
	if !isAllDigits(datePart) {
		return migration.Migration{}, fmt.Errorf("%w: %q", migrateerr.ErrInvalidDate, datePart)
	}
	if len(stem) < datePrefixLen+1 || stem[datePrefixLen] != '_' {
		return migration.Migration{}, migrateerr.ErrMissingTime
	}
	if len(stem) < dateTimeLen {
		return migration.Migration{}, migrateerr.ErrMissingTime
	}
	timePart := stem[datePrefixLen+1 : dateTimeLen]
	if !isAllDigits(timePart) {
		return migration.Migration{}, fmt.Errorf("%w: %q", migrateerr.ErrInvalidTime, timePart)
	}

	key, err := migration.ParseKey(datePart + "_" + timePart)
	if err != nil {
		return migration.Migration{}, fmt.Errorf("%w: %v", migrateerr.ErrInvalidDate, err)
	}

	title := ""
	if len(stem) > dateTimeLen {
		rest := stem[dateTimeLen:]
		rest = strings.TrimPrefix(rest, "_")
		title = strings.ReplaceAll(rest, "_", " ")
	}

	return migration.Migration{
		Key:        key,
		Kind:       kind,
		Title:      title,
		ScriptPath: filepath.Join(dir, filename),
	}, nil
}

// extensionKind determines the Kind and the length, in bytes, of the
// matched extension. It rejects names carrying both direction markers.
func extensionKind(filename string) (migration.Kind, int, error) {
	if strings.Contains(filename, ".up.") && strings.Contains(filename, ".down.") {
		return 0, 0, migrateerr.ErrAmbiguousDirection
	}
	switch {
	case strings.HasSuffix(filename, downExt):
		return migration.Down, len(downExt), nil
	case strings.HasSuffix(filename, upScriptExt):
		return migration.Up, len(upScriptExt), nil
	case strings.HasSuffix(filename, scriptExt):
		return migration.Up, len(scriptExt), nil
	default:
		return 0, 0, migrateerr.ErrInvalidFilename
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewBaseline constructs an in-memory Migration with Kind == Baseline.
// This is the only path through which a Baseline is produced; the
// filename parser above never infers it. The CLI's create command does
// not call it; it writes only Up and Down files.
func NewBaseline(key migration.Key, title, scriptPath string) migration.Migration {
	return migration.Migration{
		Key:        key,
		Kind:       migration.Baseline,
		Title:      title,
		ScriptPath: scriptPath,
	}
}

// UpPostfix controls whether Emit names forward migrations
// "*.up.surql" (true, the default) or bare "*.surql" (false).
type EmitOptions struct {
	UpPostfix bool
}

// DefaultEmitOptions matches the original's MigrationFilenameStrategy
// default (up_postfix: true).
func DefaultEmitOptions() EmitOptions { return EmitOptions{UpPostfix: true} }

// Emit formats the filename for a new migration. Emitting a filename
// for Kind == Baseline is a programmer error, since Baselines are
// never written as files; it is reported rather than panicking.
func Emit(key migration.Key, kind migration.Kind, title string, opts EmitOptions) (string, error) {
	if kind == migration.Baseline {
		return "", migrateerr.ErrBaselineNotEmitable
	}

	var sb strings.Builder
	sb.WriteString(key.String())
	if title != "" {
		sb.WriteByte('_')
		sb.WriteString(strings.ReplaceAll(title, " ", "_"))
	}

	switch kind {
	case migration.Down:
		sb.WriteString(downExt)
	case migration.Up:
		if opts.UpPostfix {
			sb.WriteString(upScriptExt)
		} else {
			sb.WriteString(scriptExt)
		}
	}
	return sb.String(), nil
}
