// Package cmd implements the dbginfo command-line tool: load a cc65-style
// debug information file and query it without writing any Go.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sixfiveohtwo/dbginfo/config"
	"github.com/sixfiveohtwo/dbginfo/dbginfo"
	"github.com/sixfiveohtwo/dbginfo/diag"
)

var (
	cfg     *config.Config
	colorOn bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dbginfo",
		Short:         "Inspect cc65-style debug information files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = c
			colorOn = cfg.CLI.ColorOutput
			return nil
		},
	}

	root.AddCommand(newLoadCmd())
	root.AddCommand(newQueryCmd())
	return root
}

// Execute runs the dbginfo CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

// openState loads path and prints every diagnostic to stderr as it's
// raised, the way a command-line tool should surface problems as it
// encounters them rather than batching them until the end.
func openState(path string) (*dbginfo.State, error) {
	sink := diag.Sink(func(d diag.Diagnostic) {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", d.Pos, d.Severity, d.Message)
	})
	return dbginfo.Load(path, sink, dbginfo.VersionPolicy{
		AcceptNewerMinor: cfg.Format.AcceptNewerMinor,
		AcceptNewerMajor: cfg.Format.AcceptNewerMajor,
	})
}
