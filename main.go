// ABOUTME: Entry point for git-export-unstaged command
// ABOUTME: Handles CLI parsing and configuration, then delegates to the export logic

// Package main provides the CLI interface for git-export-unstaged
package main

import (
	"fmt"
	"os"

	"github.com/obra/git-export-unstaged/internal/config"
	"github.com/obra/git-export-unstaged/internal/console"
	"github.com/obra/git-export-unstaged/internal/export"
	"github.com/obra/git-export-unstaged/internal/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-export-unstaged [--output FILE] [--encoding NAME] [--repo-root] [--dry-run] [--debug] [pathspec...]",
		Short: "Export unstaged changes of the current git work tree to a file",
		Long: `git-export-unstaged captures the output of "git diff" (working tree against
the index) and writes it to a UTF-8 file. Bytes that are not valid in the
source encoding are replaced with U+FFFD instead of aborting the export.

Export failures are reported on the console and the exit status is 0
unless --strict is given. Invalid flags or configuration (for example an
unknown --encoding) are rejected before git runs and always exit 1.

Examples:
  git-export-unstaged
  git-export-unstaged -o review.patch
  git-export-unstaged --encoding gbk --repo-root src/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	if err := log.Init(logOptions(cfg)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer log.Sync()

	if cfg.ConfigFile != "" {
		log.Debugw("loaded config file", "path", cfg.ConfigFile)
	}

	// Get current working directory
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	exporter := export.NewExporter(wd)
	exporter.SetEncoding(cfg.Encoding)
	exporter.SetRepoRoot(cfg.RepoRoot)
	exporter.SetPaths(args...)

	printer := console.New(cmd.OutOrStdout())

	var kind export.Kind
	if cfg.DryRun {
		kind = exporter.Preview(printer, cfg.Output)
	} else {
		kind = exporter.Run(printer, cfg.Output)
	}

	if cfg.Strict && kind != export.Succeeded {
		return fmt.Errorf("export failed: %s", kind)
	}

	return nil
}

func logOptions(cfg *config.Config) *log.Options {
	opts := log.NewOptions()
	opts.Encoding = cfg.LogFormat
	if cfg.Debug {
		opts.Level = "debug"
		opts.DisableCaller = false
	}
	return opts
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
