package main

import (
	"flag"

	"github.com/aatuh/surreal-migrate/runner"
	"github.com/aatuh/surreal-migrate/scanner"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func newScanner(cfg runner.Config) (*scanner.Scanner, error) {
	return scanner.New(cfg.MigrationsFolder, cfg.ExcludedFiles)
}
