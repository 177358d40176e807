// Package storeaddr provides the store module: an ADDRESS STORE target
// over the shared variable service and the run log of a store. Commands
// and methods use the same verbs: SET name value, GET name, DEL name,
// KEYS and RUNS.
package storeaddr

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

// New returns the store module over st, loadable with REQUIRE
// "registry:store".
func New(st storedefs.Store) eval.ModuleDef {
	return eval.ModuleDef{
		ID:     "rex/store",
		Target: &target{st: st},
	}
}

type target struct {
	st storedefs.Store
}

func (t *target) Name() string { return "STORE" }

func (t *target) Capabilities() eval.Capabilities {
	return eval.Capabilities{CommandString: true, MethodCall: true}
}

func (t *target) Handle(ctx context.Context, call eval.Call) (eval.Reply, error) {
	verb, args := call.Method, call.Args
	if verb == "" {
		verb, args = parseCommand(call.Command)
	}
	switch verb {
	case "SET":
		if len(args) != 2 {
			return fail("SET needs a name and a value")
		}
		return done("", t.st.SetSharedVar(args[0], args[1]))
	case "GET":
		if len(args) != 1 {
			return fail("GET needs a name")
		}
		v, err := t.st.SharedVar(args[0])
		return done(v, err)
	case "DEL":
		if len(args) != 1 {
			return fail("DEL needs a name")
		}
		return done("", t.st.DelSharedVar(args[0]))
	case "KEYS":
		if len(args) != 0 {
			return fail("KEYS takes no arguments")
		}
		names, err := t.st.SharedVarNames()
		return done(strings.Join(names, "\n"), err)
	case "RUNS":
		if len(args) != 0 {
			return fail("RUNS takes no arguments")
		}
		out, err := t.runLines()
		return done(out, err)
	default:
		return fail("unknown method " + verb)
	}
}

// runLines renders the run log, one "seq timestamp script" line per run.
func (t *target) runLines() (string, error) {
	next, err := t.st.NextRunSeq()
	if err != nil {
		return "", err
	}
	runs, err := t.st.RunsWithSeq(0, next)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(runs))
	for i, r := range runs {
		lines[i] = strconv.Itoa(r.Seq) + " " +
			r.At.Format(time.DateTime) + " " + r.Script
	}
	return strings.Join(lines, "\n"), nil
}

// parseCommand splits a command string into a verb, a name and, for SET,
// the rest of the string verbatim as the value.
func parseCommand(cmd string) (string, []string) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	verb = strings.ToUpper(verb)
	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return verb, nil
	}
	if verb == "SET" {
		name, value, ok := strings.Cut(rest, " ")
		if !ok {
			return verb, []string{name}
		}
		return verb, []string{name, value}
	}
	return verb, []string{rest}
}

func done(out string, err error) (eval.Reply, error) {
	if err != nil {
		return eval.DoneReply(eval.Result{Err: err.Error(), Status: 1}), nil
	}
	return eval.DoneReply(eval.Result{Success: true, Output: out}), nil
}

func fail(msg string) (eval.Reply, error) {
	return eval.DoneReply(eval.Result{Err: msg, Status: 1}), nil
}
