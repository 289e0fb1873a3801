// Package bootstrap assembles the logger, runner, and admin service
// from a loaded Config, the way the toolkit's own bootstrap package
// assembles its router and database pool — a thin composition layer,
// not a place for new logic.
package bootstrap

import (
	"github.com/aatuh/surreal-migrate/admin"
	"github.com/aatuh/surreal-migrate/clock"
	"github.com/aatuh/surreal-migrate/idgen"
	"github.com/aatuh/surreal-migrate/logzap"
	"github.com/aatuh/surreal-migrate/ports"
	"github.com/aatuh/surreal-migrate/runner"
	"github.com/aatuh/surreal-migrate/validation"
)

// NewLogger builds the zap-backed production logger every layer of
// this module takes as a ports.Logger.
func NewLogger() ports.Logger {
	return logzap.NewProduction()
}

// NewRunner builds a Runner tagged with a fresh ULID run ID, so every
// log line this invocation emits can be correlated back to it.
func NewRunner(cfg runner.Config, conn ports.Conn, appliedBy string, log ports.Logger) *runner.Runner {
	runID := idgen.NewULIDGen().New()
	return runner.New(cfg, conn, appliedBy,
		runner.WithLogger(log),
		runner.WithRunID(runID),
		runner.WithClock(clock.NewSystemClock()))
}

// NewAdminService builds the read-only admin/status HTTP service
// around an already-constructed Runner.
func NewAdminService(r *runner.Runner, conn ports.Conn, log ports.Logger) *admin.Service {
	return admin.New(r, conn, log, validation.New())
}
