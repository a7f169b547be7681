package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.dbg>",
		Short: "Load a debug info file and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := openState(args[0])
			if err != nil {
				return err
			}
			q := state.Query
			fmt.Printf("files:    %d\n", q.FileCount())
			fmt.Printf("modules:  %d\n", q.ModuleCount())
			fmt.Printf("scopes:   %d\n", q.ScopeCount())
			fmt.Printf("segments: %d\n", q.SegmentCount())
			fmt.Printf("spans:    %d\n", q.SpanCount())
			fmt.Printf("lines:    %d\n", q.LineCount())
			fmt.Printf("symbols:  %d\n", q.SymbolCount())
			return nil
		},
	}
}
