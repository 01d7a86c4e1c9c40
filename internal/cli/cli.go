// Package cli implements the arenactl command-line interface.
//
// arenactl inspects, verifies and rewrites arena snapshot files, and lists
// or prunes the versions kept in a snapshot store.
//
// # Commands
//
//   - inspect: print a snapshot header
//   - verify: decode a snapshot and print its slot usage
//   - convert: rewrite a snapshot with another codec or compression
//   - ls: list the stored versions of an arena
//   - prune: delete old versions of an arena
//
// Payloads are decoded without knowing the value type, so verify and convert
// only handle snapshots written with a JSON codec.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and also backs the genarena.Logger handed
// to snapshot stores.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// NewRootCmd builds the command tree. Output goes to stdout, logs to stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "arenactl",
		Short:         "Inspect and manage generational arena snapshots",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("arenactl %s (commit: %s)\n", version, commit))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInspectCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newPruneCmd())

	return root
}

// Execute runs arenactl with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}
