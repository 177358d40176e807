// Package shell is the entry point for the terminal interface of Rex: it
// runs scripts, code given with -c, and interactive sessions.
package shell

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/logutil"
	"github.com/rexlang/rex/pkg/prog"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the interpreter subprogram.
type Program struct {
	stopWatch <-chan struct{} // Used in tests.
}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	rc := &RC{}
	if !f.NoRc {
		path, err := rcPath(f)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		} else {
			rc, err = readRC(path)
			if err != nil {
				fmt.Fprintln(fds[2], "Warning:", err)
			}
		}
	}
	// Flags override file values.
	if f.DB != "" {
		rc.StoreDB = f.DB
	}
	if f.Sock != "" {
		rc.Daemon.Sock = f.Sock
	}

	interrupts, stopSignals := notifyInterrupts()
	defer stopSignals()
	sess := &session{rc: rc, interrupts: interrupts}

	if len(args) > 0 {
		if f.Watch && f.CodeInArg {
			return prog.BadUsage("-watch cannot be used with -c")
		}
		exit := script(fds, args, sess, &scriptCfg{
			Cmd: f.CodeInArg, ParseOnly: f.ParseOnly, JSON: f.JSON,
			Watch: f.Watch, stop: p.stopWatch})
		return prog.Exit(exit)
	}
	switch {
	case f.CodeInArg:
		return prog.BadUsage("-c requires an argument")
	case f.ParseOnly:
		return prog.BadUsage("-parseonly requires a script or -c code")
	case f.Watch:
		return prog.BadUsage("-watch requires a script")
	}
	return prog.Exit(interact(fds, sess))
}

// session is what one shell invocation shares between runs: the
// configuration and the interrupt wiring. Evalers are per run; watch mode
// starts every rerun from a fresh one.
type session struct {
	rc         *RC
	interrupts <-chan struct{}
}

// evalCfg builds the evaluation config for one run writing to the given
// stdout.
func (sess *session) evalCfg(stdout io.Writer, args []string) eval.EvalCfg {
	return eval.EvalCfg{
		Stdout: stdout, Args: args, Interrupts: sess.interrupts,
		Digits: sess.rc.Digits, Fuzz: sess.rc.Fuzz,
	}
}

// notifyInterrupts converts SIGINT deliveries into the HALT channel of
// EvalCfg. The channel keeps at most one pending interrupt.
func notifyInterrupts() (<-chan struct{}, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	ch := make(chan struct{}, 1)
	go func() {
		for range sigCh {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch, func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
}
