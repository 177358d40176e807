// Rex is an interpreter for a REXX dialect with pluggable command routing.
// Scripts address their commands to named targets, which may answer right
// away or suspend the script behind a checkpoint and resume it later. The
// same binary contains the interpreter, a small storage daemon and a
// language server.
package main

import (
	"os"

	"github.com/rexlang/rex/pkg/buildinfo"
	"github.com/rexlang/rex/pkg/daemon"
	"github.com/rexlang/rex/pkg/lsp"
	"github.com/rexlang/rex/pkg/prog"
	"github.com/rexlang/rex/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			buildinfo.Program{}, daemon.Program{}, lsp.Program{},
			shell.Program{})))
}
