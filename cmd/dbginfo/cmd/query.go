package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	query := &cobra.Command{
		Use:   "query",
		Short: "Query a loaded debug info file",
	}

	query.AddCommand(newQueryLineCmd())
	query.AddCommand(newQuerySymbolCmd())
	query.AddCommand(newQueryAddrCmd())
	query.AddCommand(newQueryRangeCmd())
	return query
}

// parseAddr accepts both "0x"-prefixed hex and plain decimal.
func parseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func newQueryLineCmd() *cobra.Command {
	var file string
	var fileID uint32
	var lineNo uint64

	c := &cobra.Command{
		Use:   "line",
		Short: "Look up debug lines by file id and line number",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := openState(file)
			if err != nil {
				return err
			}
			lines := state.Query.LineByFileAndLine(fileID, lineNo)
			for _, l := range lines {
				fmt.Printf("id=%d file=%d line=%d type=%d\n", l.ID, l.File, l.LineNumber, l.Type)
			}
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "debug info file to load")
	c.Flags().Uint32Var(&fileID, "fileid", 0, "id of the source file record to look in")
	c.Flags().Uint64Var(&lineNo, "line", 0, "line number to look up")
	c.MarkFlagRequired("file")
	c.MarkFlagRequired("fileid")
	c.MarkFlagRequired("line")
	return c
}

func newQuerySymbolCmd() *cobra.Command {
	var file, name string

	c := &cobra.Command{
		Use:   "symbol",
		Short: "Look up symbols by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := openState(file)
			if err != nil {
				return err
			}
			for _, s := range state.Query.SymbolsByName(name) {
				fmt.Printf("id=%d name=%s value=0x%x size=%d\n", s.ID, s.Name, s.Value, s.Size)
			}
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "debug info file to load")
	c.Flags().StringVar(&name, "name", "", "symbol name to look up")
	c.MarkFlagRequired("file")
	c.MarkFlagRequired("name")
	return c
}

func newQueryAddrCmd() *cobra.Command {
	var file, addrStr string

	c := &cobra.Command{
		Use:   "addr",
		Short: "Look up spans covering an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := openState(file)
			if err != nil {
				return err
			}
			addr, err := parseAddr(addrStr)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", addrStr, err)
			}
			for _, sp := range state.Query.SpansByAddress(addr) {
				fmt.Printf("span id=%d seg=%d [0x%x,0x%x]\n", sp.ID, sp.Segment, sp.Start, sp.End)
			}
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "debug info file to load")
	c.Flags().StringVar(&addrStr, "addr", "", "address to look up")
	c.MarkFlagRequired("file")
	c.MarkFlagRequired("addr")
	return c
}

func newQueryRangeCmd() *cobra.Command {
	var file, loStr, hiStr string

	c := &cobra.Command{
		Use:   "range",
		Short: "Look up label symbols within an address range",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := openState(file)
			if err != nil {
				return err
			}
			lo, err := parseAddr(loStr)
			if err != nil {
				return fmt.Errorf("invalid low address %q: %w", loStr, err)
			}
			hi, err := parseAddr(hiStr)
			if err != nil {
				return fmt.Errorf("invalid high address %q: %w", hiStr, err)
			}
			for _, s := range state.Query.SymbolsInRange(int64(lo), int64(hi)) {
				fmt.Printf("id=%d name=%s value=0x%x\n", s.ID, s.Name, s.Value)
			}
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "debug info file to load")
	c.Flags().StringVar(&loStr, "lo", "", "low address, inclusive")
	c.Flags().StringVar(&hiStr, "hi", "", "high address, inclusive")
	c.MarkFlagRequired("file")
	c.MarkFlagRequired("lo")
	c.MarkFlagRequired("hi")
	return c
}
