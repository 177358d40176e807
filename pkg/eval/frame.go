package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/eval/vals"
	"github.com/rexlang/rex/pkg/parse"
)

var (
	defaultDigits = vals.DefaultDigits
	defaultFuzz   = vals.DefaultFuzz
)

// DefaultTarget is the address target in effect before any ADDRESS
// statement runs.
const DefaultTarget = "SYSTEM"

// Frame is the execution state of one routine activation: its variable
// pool, numeric settings, address targets, condition traps and arguments.
type Frame struct {
	Evaler *Evaler

	src   parse.Source
	chunk *parse.Chunk

	pool *pool
	// Pool of the calling frame, used by PROCEDURE EXPOSE. Nil in the
	// top-level frame.
	callerPool *pool

	out  io.Writer
	args []string

	digits int
	fuzz   int

	// Current and alternate address target names. ADDRESS with no operand
	// swaps the two.
	address    string
	addressAlt string
	// Authentication context attached by ADDRESS ... AUTH, passed along on
	// every dispatch to the target.
	auth string

	interrupts <-chan struct{}

	traps    map[string]*trap
	lastCond *condInfo

	// Whether a statement other than a label has run yet. PROCEDURE is
	// only valid before that.
	begun bool

	traceback *StackTrace
}

// trap is an installed SIGNAL ON handler. A trap disarms when it fires and
// stays disarmed while its handler runs, until the script re-arms it.
type trap struct {
	label string
	armed bool
}

// condInfo describes the most recently trapped condition, for the
// CONDITION built-in.
type condInfo struct {
	name  string
	desc  string
	instr string
}

func (fm *Frame) numCtx() vals.Context {
	return vals.Context{Digits: fm.digits, Fuzz: fm.fuzz}
}

// NumContext returns the numeric settings of the frame, for module
// functions that do their own arithmetic or formatting.
func (fm *Frame) NumContext() vals.Context { return fm.numCtx() }

// Var returns the value of a variable and whether it is set. Compound
// names take their tail literally, with no substitution of symbol parts.
func (fm *Frame) Var(name string) (string, bool) {
	name = norm(name)
	if head, tail, ok := splitCompound(name); ok {
		return fm.pool.getCompound(head, tail)
	}
	return fm.pool.getSimple(name)
}

// SetVar assigns a variable in the frame's pool. Compound names take
// their tail literally, with no substitution of symbol parts.
func (fm *Frame) SetVar(name, value string) {
	name = norm(name)
	if head, ok := stemName(name); ok {
		fm.pool.setStemDefault(head, value)
		return
	}
	if head, tail, ok := splitCompound(name); ok {
		fm.pool.setCompound(head, tail, value)
		return
	}
	fm.pool.setSimple(name, value)
}

// fork creates a frame for a routine activation. The child shares the
// caller's pool until a PROCEDURE instruction replaces it with a fresh
// one. Numeric settings, address targets and traps are copied, so changes
// the routine makes to those are dropped when it returns.
func (fm *Frame) fork(callSite diag.Ranger) *Frame {
	traps := make(map[string]*trap, len(fm.traps))
	for name, tr := range fm.traps {
		cp := *tr
		traps[name] = &cp
	}
	return &Frame{
		Evaler:     fm.Evaler,
		src:        fm.src,
		chunk:      fm.chunk,
		pool:       fm.pool,
		callerPool: fm.pool,
		out:        fm.out,
		digits:     fm.digits,
		fuzz:       fm.fuzz,
		address:    fm.address,
		addressAlt: fm.addressAlt,
		auth:       fm.auth,
		interrupts: fm.interrupts,
		traps:      traps,
		traceback: &StackTrace{
			Head: diag.NewContext(fm.src.Name, fm.src.Code, callSite),
			Next: fm.traceback,
		},
	}
}

// errorp attaches a source context and the current traceback to an error,
// raising it as the given condition. Errors that are already exceptions
// pass through unchanged.
func (fm *Frame) errorp(r diag.Ranger, cond string, e error) error {
	switch e := e.(type) {
	case nil:
		return nil
	case *exception:
		return e
	case *flowErr:
		return e
	default:
		ctx := diag.NewContext(fm.src.Name, fm.src.Code, r)
		return NewException(cond, e, &StackTrace{Head: ctx, Next: fm.traceback})
	}
}

// errorpf is like errorp but with a formatted message.
func (fm *Frame) errorpf(r diag.Ranger, cond string, format string, args ...any) error {
	return fm.errorp(r, cond, fmt.Errorf(format, args...))
}

func (fm *Frame) interrupted() bool {
	if fm.interrupts == nil {
		return false
	}
	select {
	case <-fm.interrupts:
		return true
	default:
		return false
	}
}

// runChunk executes the top-level statements of a routine activation,
// starting at the beginning.
func (fm *Frame) runChunk(ch *parse.Chunk) error {
	return fm.runChunkFrom(ch, 0)
}

// runChunkFrom is the statement walker of one activation. It owns the two
// kinds of non-local transfer that stay within the activation: SIGNAL
// jumps, and trapped conditions transferring to their handler label.
func (fm *Frame) runChunkFrom(ch *parse.Chunk, idx int) error {
	for idx < len(ch.Stmts) {
		st := ch.Stmts[idx]
		err := fm.execStmt(st)
		if err == nil {
			idx++
			continue
		}
		if f, ok := err.(*flowErr); ok && f.kind == flowSignal {
			i, ok := findLabel(ch, f.label)
			if !ok {
				return fm.errorpf(st, CondSyntax, "label %s does not exist", f.label)
			}
			fm.noteTransfer(st)
			idx = i
			continue
		}
		if f, ok := err.(*flowErr); ok && (f.kind == flowLeave || f.kind == flowIterate) {
			// A LEAVE or ITERATE that escaped every loop of the activation.
			what := strings.ToUpper(flowNames[f.kind])
			if f.name != "" {
				what += " " + norm(f.name)
			}
			err = fm.errorpf(st, CondSyntax, "%s is not within a loop", what)
		}
		if exc, ok := err.(*exception); ok {
			if i, herr, handled := fm.fireTrap(ch, st, exc); handled {
				if herr != nil {
					return herr
				}
				idx = i
				continue
			}
		}
		return err
	}
	return nil
}

// fireTrap consults the armed traps for the raised condition. When one
// fires it is disarmed, condition info and SIGL are recorded, and
// execution transfers to the handler label.
func (fm *Frame) fireTrap(ch *parse.Chunk, at parse.Stmt, exc *exception) (int, error, bool) {
	tr := fm.traps[exc.cond]
	if tr == nil || !tr.armed {
		return 0, nil, false
	}
	tr.armed = false
	fm.lastCond = &condInfo{
		name:  exc.cond,
		desc:  exc.reason.Error(),
		instr: strings.TrimSpace(sourceOf(fm.src, at)),
	}
	fm.noteTransfer(at)
	i, ok := findLabel(ch, tr.label)
	if !ok {
		return 0, fm.errorpf(at, CondSyntax, "label %s does not exist", tr.label), true
	}
	return i, nil, true
}

// noteTransfer records the line a SIGNAL or trap transferred from in the
// SIGL variable.
func (fm *Frame) noteTransfer(at diag.Ranger) {
	line := 1 + strings.Count(fm.src.Code[:at.Range().From], "\n")
	fm.pool.setSimple("SIGL", fmt.Sprint(line))
}

func findLabel(ch *parse.Chunk, name string) (int, bool) {
	want := norm(name)
	for i, st := range ch.Stmts {
		if l, ok := st.(*parse.LabelStmt); ok && norm(l.Name) == want {
			return i, true
		}
	}
	return 0, false
}

// invokeRoutine runs the internal routine at the given label with a fresh
// frame. It returns the RETURN value, whether there was one, and any error
// that escaped the routine. Falling off the end of the source inside a
// routine ends the whole program, as EXIT does.
func (fm *Frame) invokeRoutine(callSite diag.Ranger, idx int, args []string) (string, bool, error) {
	sub := fm.fork(callSite)
	sub.args = args
	err := sub.runChunkFrom(fm.chunk, idx)
	switch e := err.(type) {
	case nil:
		return "", false, &flowErr{kind: flowExit}
	case *flowErr:
		if e.kind == flowReturn {
			return e.value, e.hasValue, nil
		}
		return "", false, err
	default:
		return "", false, err
	}
}

// sourceOf extracts the source text of a node.
func sourceOf(src parse.Source, r diag.Ranger) string {
	rg := r.Range()
	if rg.From < 0 || rg.To > len(src.Code) || rg.From > rg.To {
		return ""
	}
	return src.Code[rg.From:rg.To]
}

// norm folds a symbol, label or target name to its canonical upper-case
// form.
func norm(name string) string {
	return strings.ToUpper(name)
}
