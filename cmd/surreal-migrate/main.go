// Command surreal-migrate is the CLI front end for the migration
// engine: create, migrate, revert, list, verify. It is the only place
// that writes to the ledger — the admin HTTP service is read-only.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aatuh/surreal-migrate/admin"
	"github.com/aatuh/surreal-migrate/bootstrap"
	"github.com/aatuh/surreal-migrate/config"
	"github.com/aatuh/surreal-migrate/definition"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/ports"
	"github.com/aatuh/surreal-migrate/runner"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: surreal-migrate <create|migrate|revert|list|verify|serve> [flags]")
	}

	cmd, rest := args[0], args[1:]
	cfg := config.MustLoadRunnerConfigFromEnv()
	dbCfg := config.MustLoadDbClientConfigFromEnv()

	switch cmd {
	case "create":
		return runCreate(cfg, rest)
	case "migrate":
		return runMigrate(cfg, dbCfg, rest)
	case "revert":
		return runRevert(cfg, dbCfg, rest)
	case "list":
		return runList(cfg, rest)
	case "verify":
		return runVerify(cfg, rest)
	case "serve":
		return runServe(cfg, dbCfg, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newConn is the single seam a real deployment replaces to talk to an
// actual SurrealDB server; this repository ships no such adapter, so
// every subcommand that would connect fails loudly instead of
// silently operating against an in-memory stand-in.
func newConn(dbCfg config.DbClientConfig) (ports.Conn, error) {
	return nil, fmt.Errorf(
		"surreal-migrate: no database driver configured for %q; "+
			"wire a ports.Conn implementation before running this command",
		dbCfg.Address)
}

func runCreate(cfg runner.Config, args []string) error {
	fs := newFlagSet("create")
	key := fs.String("key", "", "migration key in YYYYMMDD_HHMMSS format")
	down := fs.Bool("down", false, "also create a down migration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")

	var k migration.Key
	if *key == "" {
		k = migration.NewKey(time.Now())
	} else {
		parsed, err := migration.ParseKey(*key)
		if err != nil {
			return fmt.Errorf("invalid key! please specify a key in the format YYYYMMDD_HHMMSS: %w", err)
		}
		k = parsed
	}

	if err := os.MkdirAll(cfg.MigrationsFolder, 0o755); err != nil {
		return err
	}

	upName, err := definition.Emit(k, migration.Up, title, definition.DefaultEmitOptions())
	if err != nil {
		return err
	}
	upPath := cfg.MigrationsFolder + string(os.PathSeparator) + upName
	if err := os.WriteFile(upPath, []byte{}, 0o644); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Migrations located at %s:\n", cfg.MigrationsFolder)
	fmt.Println()
	fmt.Printf("New migration %s created.\n", upName)

	if *down {
		downName, err := definition.Emit(k, migration.Down, title, definition.DefaultEmitOptions())
		if err != nil {
			return err
		}
		downPath := cfg.MigrationsFolder + string(os.PathSeparator) + downName
		if err := os.WriteFile(downPath, []byte{}, 0o644); err != nil {
			return err
		}
		fmt.Printf("New backward migration %s created.\n", downName)
	}
	fmt.Println()
	return nil
}

func runMigrate(cfg runner.Config, dbCfg config.DbClientConfig, args []string) error {
	fs := newFlagSet("migrate")
	to := fs.String("to", "", "apply migrations up to and including this key")
	ignoreChecksum := fs.Bool("ignore-checksum", false, "do not verify checksum of already applied migrations")
	ignoreOrder := fs.Bool("ignore-order", false, "do not verify the order of migrations to be applied")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg = config.ApplyCLIOverrides(cfg, *ignoreChecksum, *ignoreOrder, "")

	conn, err := newConn(dbCfg)
	if err != nil {
		return err
	}
	log := bootstrap.NewLogger()
	r := bootstrap.NewRunner(cfg, conn, dbCfg.Username, log)
	ctx := context.Background()

	var result runner.Migrated
	if strings.TrimSpace(*to) != "" {
		key, err := migration.ParseKey(strings.TrimSpace(*to))
		if err != nil {
			return fmt.Errorf("the argument in option '--to %s' is not a valid migration key, "+
				"please specify the key in the format YYYYMMDD_HHMMSS, e.g. --to 20250103_140520", *to)
		}
		fmt.Printf("\nMigrating database %q/%q up to %s...\n\n", dbCfg.Namespace, dbCfg.Database, *to)
		result, err = r.MigrateTo(ctx, key)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("\nMigrating database %q/%q...\n\n", dbCfg.Namespace, dbCfg.Database)
		result, err = r.Migrate(ctx)
		if err != nil {
			return err
		}
	}

	switch result.State {
	case runner.MigratedNothing:
		fmt.Printf("No migration applied to database %q/%q. All migrations are applied already.\n",
			dbCfg.Namespace, dbCfg.Database)
	case runner.MigratedUpTo:
		fmt.Printf("\nSuccessfully migrated database %q/%q up to %s.\n",
			dbCfg.Namespace, dbCfg.Database, result.UpToKey.String())
	case runner.MigratedNoForwardMigrationsFound:
	}
	fmt.Println()
	return nil
}

func runRevert(cfg runner.Config, dbCfg config.DbClientConfig, args []string) error {
	fs := newFlagSet("revert")
	to := fs.String("to", "", "revert migrations down to (exclusive) this key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conn, err := newConn(dbCfg)
	if err != nil {
		return err
	}
	log := bootstrap.NewLogger()
	r := bootstrap.NewRunner(cfg, conn, dbCfg.Username, log)
	ctx := context.Background()

	var result runner.Reverted
	if strings.TrimSpace(*to) != "" {
		key, err := migration.ParseKey(strings.TrimSpace(*to))
		if err != nil {
			return fmt.Errorf("the argument in option '--to %s' is not a valid migration key, "+
				"please specify the key in the format YYYYMMDD_HHMMSS, e.g. --to 20250103_140520", *to)
		}
		fmt.Printf("\nReverting database %q/%q down to %s...\n\n", dbCfg.Namespace, dbCfg.Database, *to)
		result, err = r.RevertTo(ctx, key)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("\nReverting database %q/%q...\n\n", dbCfg.Namespace, dbCfg.Database)
		result, err = r.Revert(ctx)
		if err != nil {
			return err
		}
	}

	switch result.State {
	case runner.RevertedNothing:
		fmt.Printf("Nothing to revert in database %q/%q. All migrations are reverted already.\n",
			dbCfg.Namespace, dbCfg.Database)
	case runner.RevertedDownTo:
		fmt.Printf("\nSuccessfully reverted database %q/%q down to %s.\n",
			dbCfg.Namespace, dbCfg.Database, result.DownToKey.String())
	case runner.RevertedCompletely:
		fmt.Printf("\nSuccessfully reverted database %q/%q completely.\n",
			dbCfg.Namespace, dbCfg.Database)
	case runner.RevertedNoBackwardMigrationsFound:
	}
	fmt.Println()
	return nil
}

func runList(cfg runner.Config, args []string) error {
	fs := newFlagSet("list")
	up := fs.Bool("up", false, "only list forward migrations")
	down := fs.Bool("down", false, "only list backward migrations")
	applied := fs.Bool("applied", false, "only list applied migrations")
	open := fs.Bool("open", false, "only list defined but not yet applied migrations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := newScanner(cfg)
	if err != nil {
		return err
	}
	defs, err := s.ScanSortedByKey()
	if err != nil {
		return err
	}

	var predicate func(migration.Kind) bool
	switch {
	case *down && !*up:
		predicate = migration.Kind.Backward
	case *up && !*down:
		predicate = migration.Kind.Forward
	}

	fmt.Println("\nList of migrations:")
	count := 0
	for _, m := range defs {
		if predicate != nil && !predicate(m.Kind) {
			continue
		}
		// Applied/open filtering requires the ledger; without a live
		// database connection this CLI can only report what is
		// defined on disk.
		if *applied || *open {
			continue
		}
		fmt.Printf("  %s  %-8s  %s\n", m.Key.String(), m.Kind.String(), m.Title)
		count++
	}
	if count == 0 {
		fmt.Println("  No migrations found for the specified options.")
	}
	fmt.Println()
	return nil
}

func runVerify(cfg runner.Config, args []string) error {
	fs := newFlagSet("verify")
	checksum := fs.Bool("checksum", false, "only verify the checksum")
	order := fs.Bool("order", false, "only verify the order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var checks runner.Checks
	switch {
	case *checksum && !*order:
		checks = runner.OnlyChecks(runner.CheckChecksum)
	case *order && !*checksum:
		checks = runner.OnlyChecks(runner.CheckOrder)
	default:
		checks = runner.AllChecks()
	}

	dbCfg := config.MustLoadDbClientConfigFromEnv()
	conn, err := newConn(dbCfg)
	if err != nil {
		return err
	}
	log := bootstrap.NewLogger()
	r := bootstrap.NewRunner(cfg, conn, dbCfg.Username, log)

	result, err := r.VerifyChecks(context.Background(), checks)
	if err != nil {
		return err
	}

	switch result.State {
	case runner.VerifiedNoMigrationsFound:
		fmt.Println("No migrations defined.")
	case runner.VerifiedNoProblemsFound:
		fmt.Println("No problems found.")
	case runner.VerifiedFoundProblems:
		fmt.Printf("Found %d problem(s):\n", len(result.Problems))
		for _, p := range result.Problems {
			fmt.Printf("  %s  %s  %s\n", p.Key.String(), p.ScriptPath, p.Problem.String())
		}
	}
	return nil
}

// runServe starts the read-only admin/status HTTP surface. It never
// applies or reverts migrations; it only inspects what migrate/revert
// have already done.
func runServe(cfg runner.Config, dbCfg config.DbClientConfig, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", ":8090", "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conn, err := newConn(dbCfg)
	if err != nil {
		return err
	}
	log := bootstrap.NewLogger()
	r := bootstrap.NewRunner(cfg, conn, dbCfg.Username, log)
	svc := bootstrap.NewAdminService(r, conn, log)

	return admin.StartServer(context.Background(), *addr, svc.Router(), log)
}
