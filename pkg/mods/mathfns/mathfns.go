// Package mathfns provides the math module. Results are computed in
// float64 and then rounded to the caller's NUMERIC DIGITS, so precision
// beyond 17 significant digits is not available.
package mathfns

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/eval/vals"
)

// Def is the math module, loadable with REQUIRE "registry:math".
var Def = eval.ModuleDef{
	ID: "rex/math",
	Functions: []eval.FuncSpec{
		unary("SQRT", "the square root of a number", math.Sqrt),
		unary("EXP", "e raised to a power", math.Exp),
		unary("LOG", "the natural logarithm of a number", math.Log),
		unary("LOG10", "the base 10 logarithm of a number", math.Log10),
		unary("SIN", "the sine of an angle in radians", math.Sin),
		unary("COS", "the cosine of an angle in radians", math.Cos),
		unary("TAN", "the tangent of an angle in radians", math.Tan),
		unary("ATAN", "the arctangent of a number, in radians", math.Atan),
		binary("POW", "a base raised to a possibly fractional exponent", math.Pow),
		{Name: "PI", Descr: "the circle constant under the caller's precision",
			Impl: pi},
	},
}

func unary(name, descr string, f func(float64) float64) eval.FuncSpec {
	return eval.FuncSpec{
		Name: name, Params: []string{"number"}, Descr: descr,
		Impl: func(fm *eval.Frame, arg string) (string, error) {
			x, err := operand(arg)
			if err != nil {
				return "", err
			}
			return render(fm, name, f(x))
		},
	}
}

func binary(name, descr string, f func(x, y float64) float64) eval.FuncSpec {
	return eval.FuncSpec{
		Name: name, Params: []string{"x", "y"}, Descr: descr,
		Impl: func(fm *eval.Frame, a, b string) (string, error) {
			x, err := operand(a)
			if err != nil {
				return "", err
			}
			y, err := operand(b)
			if err != nil {
				return "", err
			}
			return render(fm, name, f(x, y))
		},
	}
}

func pi(fm *eval.Frame) (string, error) {
	return render(fm, "PI", math.Pi)
}

func operand(s string) (float64, error) {
	n, ok := vals.ParseNum(s)
	if !ok {
		return 0, vals.NotANumber{Value: s}
	}
	f, err := strconv.ParseFloat(n.Coef.String()+"e"+strconv.Itoa(n.Exp), 64)
	if err != nil {
		return 0, vals.NotANumber{Value: s}
	}
	if n.Neg {
		f = -f
	}
	return f, nil
}

// render formats a float64 result under the caller's numeric settings.
func render(fm *eval.Frame, name string, f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("result of %s is not a number", strings.ToLower(name))
	}
	return fm.NumContext().Pos(strconv.FormatFloat(f, 'E', -1, 64))
}
