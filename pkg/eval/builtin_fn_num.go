package eval

import (
	"math/rand"
	"strconv"

	"github.com/rexlang/rex/pkg/eval/errs"
	"github.com/rexlang/rex/pkg/eval/vals"
)

// Numeric functions. All of them honor the frame's NUMERIC DIGITS and
// FUZZ settings via the frame's numeric context.

func init() {
	addBuiltinFns(map[string]any{
		"ABS":    abs,
		"SIGN":   sign,
		"MAX":    maxFn,
		"MIN":    minFn,
		"TRUNC":  trunc,
		"DIGITS": func(fm *Frame) string { return strconv.Itoa(fm.digits) },
		"FUZZ":   func(fm *Frame) string { return strconv.Itoa(fm.fuzz) },
		"RANDOM": random,
	})
	addBuiltinDocs(map[string]string{
		"ABS":    "ABS(number) - absolute value",
		"SIGN":   "SIGN(number) - -1, 0 or 1",
		"MAX":    "MAX(number...) - largest of the arguments",
		"MIN":    "MIN(number...) - smallest of the arguments",
		"TRUNC":  "TRUNC(number [, places]) - truncate to places decimal places",
		"DIGITS": "DIGITS() - current NUMERIC DIGITS setting",
		"FUZZ":   "FUZZ() - current NUMERIC FUZZ setting",
		"RANDOM": "RANDOM([min [, max]]) - random whole number in min..max",
	})
}

func abs(fm *Frame, s string) (string, error) {
	return fm.numCtx().Abs(s)
}

func sign(fm *Frame, s string) (string, error) {
	return fm.numCtx().Sign(s)
}

func maxFn(fm *Frame, first string, rest ...string) (string, error) {
	return extreme(fm, first, rest, 1)
}

func minFn(fm *Frame, first string, rest ...string) (string, error) {
	return extreme(fm, first, rest, -1)
}

func extreme(fm *Frame, first string, rest []string, want int) (string, error) {
	ctx := fm.numCtx()
	if !vals.IsNum(first) {
		return "", vals.NotANumber{Value: first}
	}
	best := first
	for _, s := range rest {
		if !vals.IsNum(s) {
			return "", vals.NotANumber{Value: s}
		}
		cmp, _ := ctx.NumCompare(s, best)
		if cmp == want {
			best = s
		}
	}
	// Round the winner to the current precision, like any other
	// arithmetic result.
	return ctx.Pos(best)
}

func trunc(fm *Frame, s string, places *int) (string, error) {
	n := 0
	if places != nil {
		n = *places
	}
	if n < 0 {
		return "", errs.BadValue{
			What: "places", Valid: "non-negative whole number",
			Actual: strconv.Itoa(n)}
	}
	return fm.numCtx().Trunc(s, n)
}

func random(fm *Frame, min, max *int) (string, error) {
	lo, hi := 0, 999
	if min != nil && max == nil {
		hi = *min
	} else if min != nil {
		lo, hi = *min, *max
	}
	if lo < 0 || hi < lo {
		return "", errs.BadValue{
			What: "RANDOM range", Valid: "0 <= min <= max",
			Actual: strconv.Itoa(lo) + ".." + strconv.Itoa(hi)}
	}
	return strconv.Itoa(lo + rand.Intn(hi-lo+1)), nil
}
