// Package daemon implements a service for mediating access to the shared
// data store, and its client.
//
// Most RPCs exposed by the service correspond to the methods of Store in the
// storedefs package and are not documented here. The service additionally
// completes dispatches to address targets it hosts; on the interpreter side
// such a hosted target appears as an ordinary address target whose
// dispatches suspend until the daemon's response arrives.
package daemon

import (
	"os"

	"github.com/rexlang/rex/pkg/logutil"
	"github.com/rexlang/rex/pkg/prog"
)

var logger = logutil.GetLogger("[daemon] ")

// Program is the daemon subprogram.
type Program struct {
	// Used in tests.
	serveOpts ServeOpts
}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.Daemon {
		return prog.ErrNotSuitable
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -daemon")
	}
	setUmaskForDaemon()
	exit := Serve(f.Sock, f.DB, p.serveOpts)
	return prog.Exit(exit)
}
