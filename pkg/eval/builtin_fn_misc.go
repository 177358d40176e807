package eval

import (
	"strconv"
	"strings"
	"time"

	"github.com/rexlang/rex/pkg/eval/errs"
	"github.com/rexlang/rex/pkg/eval/vals"
)

func init() {
	addBuiltinFns(map[string]any{
		"ARG":       argFn,
		"CONDITION": condition,
		"ADDRESS":   func(fm *Frame) string { return fm.address },
		"DATATYPE":  datatype,
		"VALUE":     valueFn,
		"TIME":      timeFn,
		"DATE":      dateFn,
		"FUNCTIONS": functions,
		"MODULES":   modules,
		"TARGETS":   targets,
	})
	addBuiltinDocs(map[string]string{
		"ARG":       "ARG([n]) - number of arguments, or the nth argument",
		"CONDITION": "CONDITION([option]) - C(ondition name), D(escription) or I(nstruction) of the last trapped condition",
		"ADDRESS":   "ADDRESS() - name of the current command target",
		"DATATYPE":  "DATATYPE(string [, type]) - NUM or CHAR, or test against type N or W",
		"VALUE":     "VALUE(name [, newvalue]) - read a variable by name, optionally assigning it",
		"TIME":      "TIME([option]) - current time, option N, L or S",
		"DATE":      "DATE([option]) - current date, option N or S",
		"FUNCTIONS": "FUNCTIONS() - names of all callable functions",
		"MODULES":   "MODULES() - canonical ids of all loaded modules",
		"TARGETS":   "TARGETS() - names of all registered address targets",
	})
}

func argFn(fm *Frame, n *int) (string, error) {
	if n == nil {
		return strconv.Itoa(len(fm.args)), nil
	}
	if *n < 1 {
		return "", errs.BadValue{
			What: "argument number", Valid: "positive whole number",
			Actual: strconv.Itoa(*n)}
	}
	if *n > len(fm.args) {
		return "", nil
	}
	return fm.args[*n-1], nil
}

func condition(fm *Frame, option *string) (string, error) {
	opt := "C"
	if option != nil && *option != "" {
		opt = strings.ToUpper((*option)[:1])
	}
	if fm.lastCond == nil {
		return "", nil
	}
	switch opt {
	case "C":
		return fm.lastCond.name, nil
	case "D":
		return fm.lastCond.desc, nil
	case "I":
		return fm.lastCond.instr, nil
	}
	return "", errs.BadValue{What: "CONDITION option", Valid: "C, D or I", Actual: *option}
}

func datatype(fm *Frame, s string, typ *string) (string, error) {
	if typ == nil {
		if vals.IsNum(s) {
			return "NUM", nil
		}
		return "CHAR", nil
	}
	t := ""
	if *typ != "" {
		t = strings.ToUpper((*typ)[:1])
	}
	switch t {
	case "N":
		return vals.FormatBool(vals.IsNum(s)), nil
	case "W":
		return vals.FormatBool(fm.numCtx().IsWhole(s)), nil
	}
	return "", errs.BadValue{What: "DATATYPE type", Valid: "N or W", Actual: *typ}
}

func valueFn(fm *Frame, name string, newval *string) (string, error) {
	old, ok := fm.lookupVar(name)
	if newval == nil {
		if !ok {
			return "", noValue{norm(name)}
		}
		return old, nil
	}
	fm.setVar(name, *newval)
	return old, nil
}

func timeFn(option *string) (string, error) {
	opt := "N"
	if option != nil && *option != "" {
		opt = strings.ToUpper((*option)[:1])
	}
	now := time.Now()
	switch opt {
	case "N":
		return now.Format("15:04:05"), nil
	case "L":
		return now.Format("15:04:05.000000"), nil
	case "S":
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return strconv.Itoa(int(now.Sub(midnight) / time.Second)), nil
	}
	return "", errs.BadValue{What: "TIME option", Valid: "N, L or S", Actual: *option}
}

func dateFn(option *string) (string, error) {
	opt := "N"
	if option != nil && *option != "" {
		opt = strings.ToUpper((*option)[:1])
	}
	now := time.Now()
	switch opt {
	case "N":
		return now.Format("2 Jan 2006"), nil
	case "S":
		return now.Format("20060102"), nil
	}
	return "", errs.BadValue{What: "DATE option", Valid: "N or S", Actual: *option}
}

func functions(fm *Frame) string {
	return strings.Join(fm.Evaler.FunctionNames(), " ")
}

func modules(fm *Frame) string {
	return strings.Join(fm.Evaler.ModuleIDs(), " ")
}

func targets(fm *Frame) string {
	return strings.Join(fm.Evaler.TargetNames(), " ")
}
