package eval

import (
	"strings"

	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/eval/vals"
	"github.com/rexlang/rex/pkg/parse"
)

func (fm *Frame) evalExpr(e parse.Expr) (string, error) {
	switch e := e.(type) {
	case *parse.StringLit:
		return fm.interpolate(e.Val), nil
	case *parse.NumberLit:
		return e.Text, nil
	case *parse.SymbolExpr:
		return fm.readVar(e)
	case *parse.UnaryExpr:
		return fm.evalUnary(e)
	case *parse.BinExpr:
		return fm.evalBin(e)
	case *parse.CallExpr:
		return fm.callFunction(e)
	default:
		return "", fm.errorpf(e, CondSyntax, "bug: unknown expression type %T", e)
	}
}

func (fm *Frame) evalBool(e parse.Expr) (bool, error) {
	v, err := fm.evalExpr(e)
	if err != nil {
		return false, err
	}
	b, err := vals.Bool(v)
	if err != nil {
		return false, fm.errorp(e, CondSyntax, err)
	}
	return b, nil
}

// readVar resolves a symbol to its value. Unset symbols raise NOVALUE;
// compound symbols fall back to the stem default before that.
func (fm *Frame) readVar(e *parse.SymbolExpr) (string, error) {
	val, ok := fm.lookupVar(e.Name)
	if !ok {
		return "", fm.errorp(e, CondNoValue, noValue{norm(e.Name)})
	}
	return val, nil
}

// lookupVar is the non-raising variant of readVar, shared with
// interpolation and the VALUE built-in.
func (fm *Frame) lookupVar(name string) (string, bool) {
	name = norm(name)
	if head, ok := stemName(name); ok {
		return fm.pool.getStemDefault(head)
	}
	if head, rawTail, ok := splitCompound(name); ok {
		return fm.pool.getCompound(head, fm.derivedTail(rawTail))
	}
	return fm.pool.getSimple(name)
}

// interpolate substitutes {name} placeholders with variable values.
// Placeholders whose variable is unset, and braces that do not form a
// well-formed placeholder, are left untouched.
func (fm *Frame) interpolate(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '{' {
			sb.WriteByte(c)
			i++
			continue
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			sb.WriteString(s[i:])
			break
		}
		name := s[i+1 : i+j]
		if !validPlaceholder(name) {
			sb.WriteByte('{')
			i++
			continue
		}
		if val, ok := fm.lookupVar(name); ok {
			sb.WriteString(val)
		} else {
			sb.WriteString(s[i : i+j+1])
		}
		i += j + 1
	}
	return sb.String()
}

func validPlaceholder(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '!' || c == '?' || c == '#' || c == '$' || c == '@':
		default:
			return false
		}
	}
	return true
}

func (fm *Frame) evalUnary(e *parse.UnaryExpr) (string, error) {
	v, err := fm.evalExpr(e.Operand)
	if err != nil {
		return "", err
	}
	ctx := fm.numCtx()
	switch e.Op {
	case "-":
		out, err := ctx.Neg(v)
		if err != nil {
			return "", fm.errorp(e, CondSyntax, err)
		}
		return out, nil
	case "+":
		out, err := ctx.Pos(v)
		if err != nil {
			return "", fm.errorp(e, CondSyntax, err)
		}
		return out, nil
	case "\\":
		b, err := vals.Bool(v)
		if err != nil {
			return "", fm.errorp(e, CondSyntax, err)
		}
		return vals.FormatBool(!b), nil
	default:
		return "", fm.errorpf(e, CondSyntax, "bug: unknown unary operator %s", e.Op)
	}
}

func (fm *Frame) evalBin(e *parse.BinExpr) (string, error) {
	lhs, err := fm.evalExpr(e.LHS)
	if err != nil {
		return "", err
	}
	rhs, err := fm.evalExpr(e.RHS)
	if err != nil {
		return "", err
	}
	ctx := fm.numCtx()
	var out string
	switch e.Op {
	case " ":
		return lhs + " " + rhs, nil
	case "||":
		return lhs + rhs, nil
	case "+":
		out, err = ctx.Add(lhs, rhs)
	case "-":
		out, err = ctx.Sub(lhs, rhs)
	case "*":
		out, err = ctx.Mul(lhs, rhs)
	case "/":
		out, err = ctx.Div(lhs, rhs)
	case "%":
		out, err = ctx.IntDiv(lhs, rhs)
	case "//":
		out, err = ctx.Rem(lhs, rhs)
	case "**":
		out, err = ctx.Pow(lhs, rhs)
	case "=", "\\=", "<>", "><", "<", ">", "<=", ">=":
		return compare(ctx, e.Op, lhs, rhs), nil
	case "==":
		return vals.FormatBool(lhs == rhs), nil
	case "\\==":
		return vals.FormatBool(lhs != rhs), nil
	case "&", "|", "&&":
		return fm.evalLogical(e, lhs, rhs)
	default:
		return "", fm.errorpf(e, CondSyntax, "bug: unknown operator %s", e.Op)
	}
	if err != nil {
		return "", fm.errorp(e, CondSyntax, err)
	}
	return out, nil
}

func (fm *Frame) evalLogical(e *parse.BinExpr, lhs, rhs string) (string, error) {
	lb, err := vals.Bool(lhs)
	if err != nil {
		return "", fm.errorp(e.LHS, CondSyntax, err)
	}
	rb, err := vals.Bool(rhs)
	if err != nil {
		return "", fm.errorp(e.RHS, CondSyntax, err)
	}
	switch e.Op {
	case "&":
		return vals.FormatBool(lb && rb), nil
	case "|":
		return vals.FormatBool(lb || rb), nil
	default: // &&, exclusive or
		return vals.FormatBool(lb != rb), nil
	}
}

// compare implements the non-strict comparison operators: numeric when
// both operands are numbers, otherwise the classic string comparison that
// ignores leading and trailing blanks and pads the shorter operand.
func compare(ctx vals.Context, op, lhs, rhs string) string {
	cmp, ok := ctx.NumCompare(lhs, rhs)
	if !ok {
		cmp = compareStrings(strings.TrimSpace(lhs), strings.TrimSpace(rhs))
	}
	var b bool
	switch op {
	case "=":
		b = cmp == 0
	case "\\=", "<>", "><":
		b = cmp != 0
	case "<":
		b = cmp < 0
	case ">":
		b = cmp > 0
	case "<=":
		b = cmp <= 0
	case ">=":
		b = cmp >= 0
	}
	return vals.FormatBool(b)
}

func compareStrings(a, b string) int {
	for len(a) < len(b) {
		a += " "
	}
	for len(b) < len(a) {
		b += " "
	}
	return strings.Compare(a, b)
}

func (fm *Frame) callFunction(e *parse.CallExpr) (string, error) {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		v, err := fm.evalExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	return fm.applyFunction(e, e.Name, args)
}

// applyFunction resolves and calls a function: internal labels first, then
// built-ins, then module functions, then the active target's method table
// when the target declares method-call support.
func (fm *Frame) applyFunction(r diag.Ranger, name string, args []string) (string, error) {
	if idx, ok := findLabel(fm.chunk, name); ok {
		val, has, err := fm.invokeRoutine(r, idx, args)
		if err != nil {
			return "", err
		}
		if !has {
			return "", fm.errorpf(r, CondSyntax,
				"function %s did not return a value", norm(name))
		}
		return val, nil
	}
	if fn := fm.Evaler.lookupFunc(name); fn != nil {
		val, has, err := fn.Call(fm, args)
		if err != nil {
			return "", fm.errorp(r, condOf(err), err)
		}
		if !has {
			return "", fm.errorpf(r, CondSyntax,
				"function %s did not return a value", norm(name))
		}
		return val, nil
	}
	if res, ok, err := fm.methodDispatch(r, name, args); ok {
		if err != nil {
			return "", err
		}
		return res.Output, nil
	}
	return "", fm.errorpf(r, CondSyntax, "function %s does not exist", norm(name))
}
