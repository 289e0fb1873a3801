// Package config loads RunnerConfig and DbClientConfig from the
// environment, the way the teacher's own config package loads its
// API config: through the envvar adapter, with explicit defaults
// rather than a process-wide singleton.
package config

import (
	"strings"

	"github.com/aatuh/surreal-migrate/envvar"
	"github.com/aatuh/surreal-migrate/runner"
)

// AuthLevel names which SurrealDB scope the connection authenticates
// against.
type AuthLevel string

const (
	AuthRoot      AuthLevel = "root"
	AuthNamespace AuthLevel = "namespace"
	AuthDatabase  AuthLevel = "database"
)

// DbClientConfig mirrors the original's DbClientConfig, including its
// documented defaults.
type DbClientConfig struct {
	Address   string `env:"SURREAL_ADDRESS"`
	Namespace string `env:"SURREAL_NAMESPACE"`
	Database  string `env:"SURREAL_DATABASE"`
	AuthLevel AuthLevel `env:"SURREAL_AUTH_LEVEL"`
	Username  string `env:"SURREAL_USERNAME"`
	Password  string `env:"SURREAL_PASSWORD"`
	Capacity  int    `env:"SURREAL_CAPACITY"`
}

// DefaultDbClientConfig matches the original's documented defaults
// (ws://localhost:8000, namespace/database "test", root auth,
// capacity 20).
func DefaultDbClientConfig() DbClientConfig {
	return DbClientConfig{
		Address:   "ws://localhost:8000",
		Namespace: "test",
		Database:  "test",
		AuthLevel: AuthRoot,
		Username:  "root",
		Password:  "root",
		Capacity:  20,
	}
}

// MustLoadRunnerConfigFromEnv loads a runner.Config, falling back to
// runner.DefaultConfig()'s values when the corresponding env var is
// unset.
func MustLoadRunnerConfigFromEnv() runner.Config {
	adapter := envvar.New()
	def := runner.DefaultConfig()
	return runner.Config{
		MigrationsFolder: adapter.GetOr("MIGRATIONS_FOLDER", def.MigrationsFolder),
		MigrationsTable:  adapter.GetOr("MIGRATIONS_TABLE", def.MigrationsTable),
		IgnoreChecksums:  adapter.GetBoolOr("IGNORE_CHECKSUM", def.IgnoreChecksums),
		IgnoreOrder:      adapter.GetBoolOr("IGNORE_ORDER", def.IgnoreOrder),
		ExcludedFiles:    adapter.GetOr("EXCLUDED_FILES", def.ExcludedFiles),
	}
}

// MustLoadDbClientConfigFromEnv loads a DbClientConfig, falling back
// to DefaultDbClientConfig()'s values when unset.
func MustLoadDbClientConfigFromEnv() DbClientConfig {
	adapter := envvar.New()
	def := DefaultDbClientConfig()
	return DbClientConfig{
		Address:   adapter.GetOr("SURREAL_ADDRESS", def.Address),
		Namespace: adapter.GetOr("SURREAL_NAMESPACE", def.Namespace),
		Database:  adapter.GetOr("SURREAL_DATABASE", def.Database),
		AuthLevel: parseAuthLevel(adapter.GetOr("SURREAL_AUTH_LEVEL", string(def.AuthLevel))),
		Username:  adapter.GetOr("SURREAL_USERNAME", def.Username),
		Password:  adapter.GetOr("SURREAL_PASSWORD", def.Password),
		Capacity:  adapter.GetIntOr("SURREAL_CAPACITY", def.Capacity),
	}
}

func parseAuthLevel(s string) AuthLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "namespace":
		return AuthNamespace
	case "database":
		return AuthDatabase
	default:
		return AuthRoot
	}
}

// ApplyCLIOverrides mirrors apply_command_args_to_runner_config: a
// boolean flag only ever turns ignore_checksum/ignore_order on, never
// back off, matching the original's additive-only CLI override rule.
func ApplyCLIOverrides(cfg runner.Config, ignoreChecksum, ignoreOrder bool, migrationsFolder string) runner.Config {
	if ignoreChecksum {
		cfg.IgnoreChecksums = true
	}
	if ignoreOrder {
		cfg.IgnoreOrder = true
	}
	if migrationsFolder != "" {
		cfg.MigrationsFolder = migrationsFolder
	}
	return cfg
}
