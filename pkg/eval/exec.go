package eval

import (
	"fmt"
	"strings"

	"github.com/rexlang/rex/pkg/eval/vals"
	"github.com/rexlang/rex/pkg/parse"
)

func (fm *Frame) execStmt(st parse.Stmt) error {
	if fm.interrupted() {
		return fm.errorpf(st, CondHalt, "halted")
	}
	wasBegun := fm.begun
	if _, ok := st.(*parse.LabelStmt); !ok {
		fm.begun = true
	}
	switch st := st.(type) {
	case *parse.LabelStmt:
		return nil
	case *parse.NopStmt:
		return nil
	case *parse.AssignStmt:
		return fm.execAssign(st)
	case *parse.SayStmt:
		return fm.execSay(st)
	case *parse.IfStmt:
		return fm.execIf(st)
	case *parse.DoStmt:
		return fm.execDo(st)
	case *parse.SelectStmt:
		return fm.execSelect(st)
	case *parse.CallStmt:
		return fm.execCall(st)
	case *parse.ProcedureStmt:
		return fm.execProcedure(st, wasBegun)
	case *parse.ReturnStmt:
		return fm.execReturn(st)
	case *parse.ExitStmt:
		return fm.execExit(st)
	case *parse.SignalStmt:
		return fm.execSignal(st)
	case *parse.ParseStmt:
		return fm.execParse(st)
	case *parse.NumericStmt:
		return fm.execNumeric(st)
	case *parse.AddressStmt:
		return fm.execAddress(st)
	case *parse.CommandStmt:
		return fm.execCommand(st)
	case *parse.RequireStmt:
		return fm.execRequire(st)
	case *parse.DropStmt:
		return fm.execDrop(st)
	case *parse.LeaveStmt:
		return &flowErr{kind: flowLeave, name: st.Name}
	case *parse.IterateStmt:
		return &flowErr{kind: flowIterate, name: st.Name}
	default:
		return fm.errorpf(st, CondSyntax, "bug: unknown statement type %T", st)
	}
}

func (fm *Frame) execStmts(sts []parse.Stmt) error {
	for _, st := range sts {
		if err := fm.execStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (fm *Frame) execAssign(st *parse.AssignStmt) error {
	val, err := fm.evalExpr(st.Value)
	if err != nil {
		return err
	}
	fm.setVar(st.Target.Name, val)
	return nil
}

// setVar stores a value under a possibly compound name, deriving the tail
// of compound names from the current pool.
func (fm *Frame) setVar(name, val string) {
	name = norm(name)
	if head, ok := stemName(name); ok {
		fm.pool.setStemDefault(head, val)
		return
	}
	if head, rawTail, ok := splitCompound(name); ok {
		fm.pool.setCompound(head, fm.derivedTail(rawTail), val)
		return
	}
	fm.pool.setSimple(name, val)
}

// derivedTail substitutes each symbol part of a compound tail with its
// value when set, and with its own name otherwise.
func (fm *Frame) derivedTail(rawTail string) string {
	parts := strings.Split(rawTail, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		n := norm(p)
		if v, ok := fm.pool.getSimple(n); ok {
			parts[i] = v
		} else {
			parts[i] = n
		}
	}
	return strings.Join(parts, ".")
}

func (fm *Frame) execSay(st *parse.SayStmt) error {
	line := ""
	if st.Value != nil {
		var err error
		line, err = fm.evalExpr(st.Value)
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(fm.out, line)
	return nil
}

func (fm *Frame) execIf(st *parse.IfStmt) error {
	b, err := fm.evalBool(st.Cond)
	if err != nil {
		return err
	}
	if b {
		return fm.execStmt(st.Then)
	}
	if st.Else != nil {
		return fm.execStmt(st.Else)
	}
	return nil
}

func (fm *Frame) execSelect(st *parse.SelectStmt) error {
	for _, w := range st.Whens {
		b, err := fm.evalBool(w.Cond)
		if err != nil {
			return err
		}
		if b {
			return fm.execStmt(w.Body)
		}
	}
	if !st.HasOtherwise {
		return fm.errorpf(st, CondSyntax,
			"no WHEN expression was true and there is no OTHERWISE")
	}
	return fm.execStmts(st.Otherwise)
}

func (fm *Frame) execDo(st *parse.DoStmt) error {
	if !st.Loops() {
		return fm.execStmts(st.Body)
	}
	ctx := fm.numCtx()

	var counter string
	if st.Counter != nil {
		counter = norm(st.Counter.Name)
		from, err := fm.evalExpr(st.From)
		if err != nil {
			return err
		}
		if !vals.IsNum(from) {
			return fm.errorp(st.From, CondSyntax, vals.NotANumber{Value: from})
		}
		fm.setVar(counter, from)
	}

	// TO and BY expressions are evaluated once, at loop entry. WHILE and
	// UNTIL are evaluated every iteration.
	var limit, step string
	if st.Limit != nil {
		var err error
		limit, err = fm.evalExpr(st.Limit)
		if err != nil {
			return err
		}
	}
	step = "1"
	if st.Step != nil {
		var err error
		step, err = fm.evalExpr(st.Step)
		if err != nil {
			return err
		}
	}
	stepSign := 1
	if st.Counter != nil {
		n, ok := vals.ParseNum(step)
		if !ok {
			return fm.errorp(st, CondSyntax, vals.NotANumber{Value: step})
		}
		if n.Neg {
			stepSign = -1
		}
	}

	remaining := -1
	if st.Repeat != nil {
		rep, err := fm.evalExpr(st.Repeat)
		if err != nil {
			return err
		}
		n, err := ctx.Whole(rep)
		if err != nil {
			return fm.errorp(st.Repeat, CondSyntax, err)
		}
		if n < 0 {
			return fm.errorpf(st.Repeat, CondSyntax,
				"repetition count must not be negative, but is %s", rep)
		}
		remaining = n
	}

	for {
		if remaining == 0 {
			return nil
		}
		if st.Counter != nil && st.Limit != nil {
			cur, ok := fm.pool.getSimple(counter)
			if !ok {
				return fm.errorpf(st, CondNoValue, "no value for %s", counter)
			}
			cmp, ok := ctx.NumCompare(cur, limit)
			if !ok {
				return fm.errorp(st, CondSyntax, vals.NotANumber{Value: limit})
			}
			if stepSign >= 0 && cmp > 0 || stepSign < 0 && cmp < 0 {
				return nil
			}
		}
		if st.While != nil {
			b, err := fm.evalBool(st.While)
			if err != nil {
				return err
			}
			if !b {
				return nil
			}
		}

		err := fm.execStmts(st.Body)
		if f, ok := err.(*flowErr); ok {
			switch f.kind {
			case flowLeave:
				if f.name == "" || norm(f.name) == counter {
					return nil
				}
				return err
			case flowIterate:
				if f.name == "" || norm(f.name) == counter {
					err = nil
				}
			}
		}
		if err != nil {
			return err
		}

		if st.Until != nil {
			b, err := fm.evalBool(st.Until)
			if err != nil {
				return err
			}
			if b {
				return nil
			}
		}
		if st.Counter != nil {
			cur, ok := fm.pool.getSimple(counter)
			if !ok {
				return fm.errorpf(st, CondNoValue, "no value for %s", counter)
			}
			next, err := ctx.Add(cur, step)
			if err != nil {
				return fm.errorp(st, CondSyntax, err)
			}
			fm.pool.setSimple(counter, next)
		}
		if remaining > 0 {
			remaining--
		}
	}
}

func (fm *Frame) execCall(st *parse.CallStmt) error {
	args := make([]string, len(st.Args))
	for i, a := range st.Args {
		v, err := fm.evalExpr(a)
		if err != nil {
			return err
		}
		args[i] = v
	}
	if idx, ok := findLabel(fm.chunk, st.Name); ok {
		val, has, err := fm.invokeRoutine(st, idx, args)
		if err != nil {
			return err
		}
		fm.setResult(val, has)
		return nil
	}
	if fn := fm.Evaler.lookupFunc(st.Name); fn != nil {
		val, has, err := fn.Call(fm, args)
		if err != nil {
			return fm.errorp(st, condOf(err), err)
		}
		fm.setResult(val, has)
		return nil
	}
	if res, ok, err := fm.methodDispatch(st, st.Name, args); ok {
		if err != nil {
			return err
		}
		fm.setResult(res.Output, true)
		return nil
	}
	return fm.errorpf(st, CondSyntax, "routine %s does not exist", norm(st.Name))
}

func (fm *Frame) setResult(val string, has bool) {
	if has {
		fm.pool.setSimple("RESULT", val)
	} else {
		fm.pool.dropSimple("RESULT")
	}
}

func (fm *Frame) execProcedure(st *parse.ProcedureStmt, begun bool) error {
	if fm.callerPool == nil {
		return fm.errorpf(st, CondSyntax,
			"PROCEDURE is only valid in an internal routine")
	}
	if begun {
		return fm.errorpf(st, CondSyntax,
			"PROCEDURE must be the first instruction of a routine")
	}
	fm.pool = newPool()
	for _, name := range st.Expose {
		fm.pool.expose(fm.callerPool, norm(name))
	}
	return nil
}

func (fm *Frame) execReturn(st *parse.ReturnStmt) error {
	if fm.callerPool == nil {
		// RETURN at the program level ends the program like EXIT.
		return fm.exitWith(st, st.Value)
	}
	f := &flowErr{kind: flowReturn}
	if st.Value != nil {
		val, err := fm.evalExpr(st.Value)
		if err != nil {
			return err
		}
		f.value, f.hasValue = val, true
	}
	return f
}

func (fm *Frame) execExit(st *parse.ExitStmt) error {
	return fm.exitWith(st, st.Value)
}

func (fm *Frame) exitWith(st parse.Stmt, value parse.Expr) error {
	if value == nil {
		return &flowErr{kind: flowExit}
	}
	val, err := fm.evalExpr(value)
	if err != nil {
		return err
	}
	n, err := fm.numCtx().Whole(val)
	if err != nil {
		return fm.errorp(value, CondSyntax, err)
	}
	return &flowErr{kind: flowExit, code: n}
}

func (fm *Frame) execSignal(st *parse.SignalStmt) error {
	switch {
	case st.On:
		handler := st.Handler
		if handler == "" {
			handler = st.Condition
		}
		fm.traps[norm(st.Condition)] = &trap{label: handler, armed: true}
		return nil
	case st.Off:
		delete(fm.traps, norm(st.Condition))
		return nil
	default:
		return &flowErr{kind: flowSignal, label: st.Label}
	}
}

func (fm *Frame) execNumeric(st *parse.NumericStmt) error {
	if st.Value == nil {
		switch st.What {
		case "DIGITS":
			fm.digits = defaultDigits
		case "FUZZ":
			fm.fuzz = defaultFuzz
		}
		return nil
	}
	val, err := fm.evalExpr(st.Value)
	if err != nil {
		return err
	}
	n, err := fm.numCtx().Whole(val)
	if err != nil {
		return fm.errorp(st.Value, CondSyntax, err)
	}
	switch st.What {
	case "DIGITS":
		if n < 1 {
			return fm.errorpf(st.Value, CondSyntax,
				"NUMERIC DIGITS must be at least 1, but is %s", val)
		}
		fm.digits = n
	case "FUZZ":
		if n < 0 || n >= fm.digits {
			return fm.errorpf(st.Value, CondSyntax,
				"NUMERIC FUZZ must be from 0 to %d, but is %s", fm.digits-1, val)
		}
		fm.fuzz = n
	}
	return nil
}

func (fm *Frame) execAddress(st *parse.AddressStmt) error {
	if st.Swap {
		fm.address, fm.addressAlt = fm.addressAlt, fm.address
		return nil
	}
	var name string
	if st.Value != nil {
		v, err := fm.evalExpr(st.Value)
		if err != nil {
			return err
		}
		name = v
	} else {
		name = st.Target
	}
	name = norm(strings.TrimSpace(name))
	if _, ok := fm.Evaler.targets.lookup(name); !ok {
		return fm.errorpf(st, CondSyntax, "address target %s does not exist", name)
	}
	auth := ""
	if st.Auth != nil {
		v, err := fm.evalExpr(st.Auth)
		if err != nil {
			return err
		}
		auth = v
	}
	fm.addressAlt = fm.address
	fm.address = name
	fm.auth = auth
	return nil
}

func (fm *Frame) execRequire(st *parse.RequireStmt) error {
	spec, err := fm.evalExpr(st.Spec)
	if err != nil {
		return err
	}
	if err := fm.Evaler.require(fm, strings.TrimSpace(spec)); err != nil {
		return fm.errorp(st, CondSyntax, err)
	}
	return nil
}

func (fm *Frame) execDrop(st *parse.DropStmt) error {
	for _, sym := range st.Names {
		name := norm(sym.Name)
		if head, ok := stemName(name); ok {
			fm.pool.dropStem(head)
		} else if head, rawTail, ok := splitCompound(name); ok {
			fm.pool.dropCompound(head, fm.derivedTail(rawTail))
		} else {
			fm.pool.dropSimple(name)
		}
	}
	return nil
}
