package eval_test

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/eval/errs"

	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestArg(t *testing.T) {
	Test(t,
		That(`say arg()`).WithArgs("a", "b").Prints("2\n"),
		That(`say arg(1)`).WithArgs("a", "b").Prints("a\n"),
		That(`say arg(3)`).WithArgs("a", "b").Prints("\n"),
		That(`say arg()`).Prints("0\n"),
		That(`say arg(0)`).Throws(ErrorWithType(errs.BadValue{})),

		// Inside an internal routine ARG reads the routine's arguments.
		That(
			`call greet 'world'`,
			`exit`,
			`greet:`,
			`say 'hi' arg(1)`,
			`return`,
		).Prints("hi world\n"),
	)
}

func TestCondition(t *testing.T) {
	Test(t,
		That(`say condition('C')`).Prints("\n"),
		That(
			`signal on syntax`,
			`say 1 + 'x'`,
			`say 'not reached'`,
			`syntax:`,
			`say condition('C')`,
			`say condition('I')`,
		).Prints("SYNTAX\nsay 1 + 'x'\n"),
		That(
			`signal on novalue name handler`,
			`say oops`,
			`say 'skipped'`,
			`handler:`,
			`say condition('C')`,
		).Prints("NOVALUE\n"),
	)
}

func TestAddressFn(t *testing.T) {
	Test(t,
		That(`say address()`).Prints(eval.DefaultTarget + "\n"),
	)
}

func TestDatatype(t *testing.T) {
	Test(t,
		That(`say datatype('12.3')`).Prints("NUM\n"),
		That(`say datatype('abc')`).Prints("CHAR\n"),
		That(`say datatype('1E2', 'N')`).Prints("1\n"),
		That(`say datatype('abc', 'N')`).Prints("0\n"),
		That(`say datatype('12', 'W')`).Prints("1\n"),
		That(`say datatype('12.5', 'W')`).Prints("0\n"),
		That(`say datatype('x', 'Q')`).Throws(ErrorWithType(errs.BadValue{})),
	)
}

func TestValueFn(t *testing.T) {
	Test(t,
		That(`x = 5`, `say value('x')`).Prints("5\n"),
		That(`old = value('y', 'new')`, `say y`, `say old`).Prints("new\n\n"),
		That(`y = 'a'`, `old = value('y', 'b')`, `say old y`).Prints("a b\n"),
		That(`say value('nope')`).ThrowsCond(eval.CondNoValue),
	)
}

func TestTimeDate(t *testing.T) {
	Test(t,
		That(`say pos(':', time())`).Prints("3\n"),
		That(`say datatype(time('S'), 'W')`).Prints("1\n"),
		That(`say length(time('L')) > length(time())`).Prints("1\n"),
		That(`say time('Q')`).Throws(ErrorWithType(errs.BadValue{})),
		That(`say length(date('S'))`).Prints("8\n"),
		That(`say words(date())`).Prints("3\n"),
		That(`say date('Q')`).Throws(ErrorWithType(errs.BadValue{})),
	)
}

func TestIntrospection(t *testing.T) {
	Test(t,
		That(`say pos('LENGTH', functions()) > 0`).Prints("1\n"),
		That(`say modules()`).Prints("\n"),
		That(`say targets()`).Prints("\n"),
		That(`say targets()`).WithSetup(useEcho).Prints("ECHO\n"),
	)
}
