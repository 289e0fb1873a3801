// Package scanner walks a migrations directory, applying the
// ExcludedFiles filter and the definition parser to produce
// migration.Migration values, and reads each one's script content on
// demand.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aatuh/surreal-migrate/definition"
	"github.com/aatuh/surreal-migrate/migrateerr"
	"github.com/aatuh/surreal-migrate/migration"
)

// Scanner enumerates migration files under one directory.
type Scanner struct {
	Dir      string
	Excluded *definition.ExcludedFiles
}

// New builds a Scanner. excludedSpec is the raw "|"-joined glob list;
// pass "" for no exclusions.
func New(dir, excludedSpec string) (*Scanner, error) {
	ex, err := definition.NewExcludedFiles(excludedSpec)
	if err != nil {
		return nil, err
	}
	return &Scanner{Dir: dir, Excluded: ex}, nil
}

// Scan reads the directory (non-recursively: subdirectories are
// skipped, not traversed) and parses every remaining regular file.
// Results are returned in directory-read order; callers that need a
// specific order sort the result themselves (the planner does not
// require sorted input).
func (s *Scanner) Scan() ([]migration.Migration, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", migrateerr.ErrScanningDirectory, err)
	}

	var out []migration.Migration
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", migrateerr.ErrScanningDirectory, err)
		}
		if isDirLike(s.Dir, entry.Name(), info) {
			continue
		}
		if s.Excluded.Matches(entry.Name()) {
			continue
		}
		m, err := definition.Parse(s.Dir, entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ScanSortedByKey is a convenience wrapper used by every runner
// operation: scan, then sort ascending by key (ties broken by kind,
// for deterministic output when a key appears under multiple kinds).
func (s *Scanner) ScanSortedByKey() ([]migration.Migration, error) {
	out, err := s.Scan()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Key.Equal(out[j].Key) {
			return out[i].Key.Before(out[j].Key)
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

func isDirLike(dir, name string, info os.FileInfo) bool {
	if info.IsDir() {
		return true
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := os.Stat(filepath.Join(dir, name))
	return err == nil && target.IsDir()
}

// ReadScript reads m's file content and computes its checksum,
// producing a ScriptContent. I/O errors surface as
// ErrReadingMigrationFile.
func ReadScript(m migration.Migration, hash func(migration.Kind, string, []byte) migration.Checksum) (migration.ScriptContent, error) {
	content, err := os.ReadFile(m.ScriptPath)
	if err != nil {
		return migration.ScriptContent{}, fmt.Errorf("%w: %v", migrateerr.ErrReadingMigrationFile, err)
	}
	return migration.ScriptContent{
		Migration: m,
		Content:   string(content),
		Checksum:  hash(m.Kind, m.ScriptPath, content),
	}, nil
}

// ReadAll reads every migration's script content, in input order.
func ReadAll(ms []migration.Migration, hash func(migration.Kind, string, []byte) migration.Checksum) ([]migration.ScriptContent, error) {
	out := make([]migration.ScriptContent, 0, len(ms))
	for _, m := range ms {
		sc, err := ReadScript(m, hash)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
