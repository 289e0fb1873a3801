// Package checksum computes the deterministic 32-bit CRC that ties a
// migration's ledger row to its on-disk script content.
package checksum

import (
	"hash"
	"path/filepath"

	"github.com/klauspost/crc32"

	"github.com/aatuh/surreal-migrate/migration"
)

// table is the IEEE (ISO-HDLC) polynomial table, accelerated where the
// platform supports it. Matches the original's use of crc32fast, whose
// default Hasher implements the same IEEE polynomial.
var table = crc32.MakeTable(crc32.IEEE)

// Hash computes the checksum over (basename of scriptPath, kind tag,
// content). An empty scriptPath contributes no filename bytes, per
// the original contract.
func Hash(kind migration.Kind, scriptPath string, content []byte) migration.Checksum {
	h := crc32.New(table)
	if scriptPath != "" {
		_, _ = h.Write([]byte(filepath.Base(scriptPath)))
	}
	_, _ = h.Write([]byte{kind.Tag()})
	_, _ = h.Write(content)
	return migration.Checksum(h.Sum32())
}

// Streamer incrementally folds filename, kind, and content bytes in
// any chunking, producing the same result as a single Hash call. This
// exists to exercise and document the "streaming equals batched"
// property the checksum contract requires.
type Streamer struct {
	h hash.Hash32
}

// NewStreamer starts a new incremental checksum.
func NewStreamer() *Streamer {
	return &Streamer{h: crc32.New(table)}
}

// Write folds additional bytes into the running checksum.
func (s *Streamer) Write(p []byte) (int, error) { return s.h.Write(p) }

// Sum returns the checksum computed so far.
func (s *Streamer) Sum() migration.Checksum { return migration.Checksum(s.h.Sum32()) }
