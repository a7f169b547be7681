// Command dbgview is a terminal browser over a resolved debug info file:
// pick a module, see its scopes and their label symbols, type an address
// and see what spans cover it. It never mutates the file it loads.
package main

import (
	"fmt"
	"os"

	"github.com/sixfiveohtwo/dbginfo/dbginfo"
	"github.com/sixfiveohtwo/dbginfo/diag"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: dbgview <file.dbg>")
		os.Exit(1)
	}

	var diags []diag.Diagnostic
	state, err := dbginfo.Load(os.Args[1], func(d diag.Diagnostic) {
		diags = append(diags, d)
	}, dbginfo.DefaultVersionPolicy())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", d.Pos, d.Severity, d.Message)
		}
		os.Exit(1)
	}

	browser := NewBrowser(state)
	if err := browser.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
