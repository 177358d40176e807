package eval_test

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"

	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestIf(t *testing.T) {
	Test(t,
		That(`if 1 then say 'yes'`).Prints("yes\n"),
		That(`if 0 then say 'yes'`).Prints(""),
		That(`if 0 then say 'yes'`, `else say 'no'`).Prints("no\n"),
		That(
			`x = 7`,
			`if x > 3 then do`,
			`say 'big'`,
			`say x`,
			`end`,
		).Prints("big\n7\n"),
		// The condition must be exactly 0 or 1.
		That(`if 2 then say 'yes'`).ThrowsCond(eval.CondSyntax),
	)
}

func TestSelect(t *testing.T) {
	Test(t,
		That(
			`x = 2`,
			`select`,
			`when x = 1 then say 'one'`,
			`when x = 2 then say 'two'`,
			`otherwise`,
			`say 'many'`,
			`end`,
		).Prints("two\n"),
		That(
			`x = 9`,
			`select`,
			`when x = 1 then say 'one'`,
			`otherwise`,
			`say 'many'`,
			`say x`,
			`end`,
		).Prints("many\n9\n"),
		// Only the first matching WHEN runs.
		That(
			`select`,
			`when 1 then say 'a'`,
			`when 1 then say 'b'`,
			`end`,
		).Prints("a\n"),
		That(
			`x = 9`,
			`select`,
			`when x = 1 then say 'one'`,
			`end`,
		).ThrowsCond(eval.CondSyntax),
	)
}

func TestDo(t *testing.T) {
	Test(t,
		That(`do`, `say 'a'`, `say 'b'`, `end`).Prints("a\nb\n"),
		That(`do 3`, `say 'x'`, `end`).Prints("x\nx\nx\n"),
		That(`do 0`, `say 'x'`, `end`).Prints(""),
		That(`do i = 1 to 3`, `say i`, `end`).Prints("1\n2\n3\n"),
		That(`do i = 3 to 1 by -1`, `say i`, `end`).Prints("3\n2\n1\n"),
		That(`do i = 1 to 10 by 4`, `say i`, `end`).Prints("1\n5\n9\n"),
		// The counter remains set after the loop.
		That(`do i = 1 to 3`, `end`, `say i`).Prints("4\n"),
		That(`i = 1`, `do while i < 4`, `say i`, `i = i + 1`, `end`).
			Prints("1\n2\n3\n"),
		That(`i = 1`, `do until i >= 3`, `say i`, `i = i + 1`, `end`).
			Prints("1\n2\n"),
		// UNTIL checks after the body, so it always runs once.
		That(`do until 1`, `say 'once'`, `end`).Prints("once\n"),
		That(`do forever`, `say 'go'`, `leave`, `end`).Prints("go\n"),
		// A fractional step works under the numeric context.
		That(`do i = 1 to 2 by 0.5`, `say i`, `end`).
			Prints("1\n1.5\n2.0\n"),
		That(`do 'x'`, `end`).ThrowsCond(eval.CondSyntax),
	)
}

func TestLeaveIterate(t *testing.T) {
	Test(t,
		That(
			`do i = 1 to 5`,
			`if i = 3 then leave`,
			`say i`,
			`end`,
		).Prints("1\n2\n"),
		That(
			`do i = 1 to 4`,
			`if i = 2 then iterate`,
			`say i`,
			`end`,
		).Prints("1\n3\n4\n"),
		// The named forms address an outer loop by its counter.
		That(
			`do i = 1 to 3`,
			`do j = 1 to 3`,
			`if j = 2 then iterate i`,
			`say i j`,
			`end`,
			`end`,
		).Prints("1 1\n2 1\n3 1\n"),
		That(
			`do i = 1 to 9`,
			`do j = 1 to 9`,
			`if i * j = 4 then leave i`,
			`end`,
			`end`,
			`say i j`,
		).Prints("1 4\n"),
		// ITERATE re-checks the UNTIL condition.
		That(
			`n = 0`,
			`do until n >= 2`,
			`n = n + 1`,
			`iterate`,
			`say 'not reached'`,
			`end`,
			`say n`,
		).Prints("2\n"),
		That(`leave`).ThrowsCond(eval.CondSyntax),
		That(`iterate`).ThrowsCond(eval.CondSyntax),
	)
}

func TestCallAndRoutines(t *testing.T) {
	Test(t,
		That(
			`call greet 'world'`,
			`say result`,
			`exit`,
			`greet:`,
			`return 'hi ' || arg(1)`,
		).Prints("hi world\n"),
		// A routine that returns no value drops RESULT.
		That(
			`result = 'stale'`,
			`call nothing`,
			`say result`,
			`exit`,
			`nothing:`,
			`return`,
		).ThrowsCond(eval.CondNoValue),
		// Internal labels win over built-ins of the same name.
		That(
			`call length 'x'`,
			`say result`,
			`exit`,
			`length:`,
			`return 'mine'`,
		).Prints("mine\n"),
		// Expression calls resolve labels first as well.
		That(
			`say double(4)`,
			`exit`,
			`double:`,
			`return arg(1) * 2`,
		).Prints("8\n"),
		That(
			`say noval()`,
			`exit`,
			`noval:`,
			`return`,
		).ThrowsCond(eval.CondSyntax),
		That(`call nowhere`).ThrowsCond(eval.CondSyntax),
		That(`say nowhere()`).ThrowsCond(eval.CondSyntax),
		// Falling off the end of the source inside a routine ends the
		// program.
		That(
			`call f`,
			`say 'back'`,
			`exit`,
			`f:`,
			`say 'in f'`,
		).Prints("in f\n"),
	)
}

func TestProcedure(t *testing.T) {
	Test(t,
		// PROCEDURE gives the routine a fresh pool.
		That(
			`x = 1`,
			`call f`,
			`say x`,
			`exit`,
			`f:`,
			`procedure`,
			`x = 2`,
			`return`,
		).Prints("1\n"),
		// Without PROCEDURE the caller's pool is shared.
		That(
			`x = 1`,
			`call f`,
			`say x`,
			`exit`,
			`f:`,
			`x = 2`,
			`return`,
		).Prints("2\n"),
		// EXPOSE shares the named variables by reference.
		That(
			`x = 1`,
			`call f`,
			`say x`,
			`exit`,
			`f:`,
			`procedure expose x`,
			`x = 2`,
			`return`,
		).Prints("2\n"),
		// Exposing a stem exposes every tail, in both directions.
		That(
			`a.1 = 'x'`,
			`call f`,
			`say a.1 a.2`,
			`exit`,
			`f:`,
			`procedure expose a.`,
			`say a.1`,
			`a.2 = 'y'`,
			`return`,
		).Prints("x\nx y\n"),
		That(`procedure`).ThrowsCond(eval.CondSyntax),
		That(
			`call f`,
			`exit`,
			`f:`,
			`say 'hi'`,
			`procedure`,
		).Prints("hi\n").ThrowsCond(eval.CondSyntax),
	)
}

func TestReturnExit(t *testing.T) {
	Test(t,
		That(`say 'a'`, `exit`, `say 'b'`).Prints("a\n"),
		That(`exit 3`).ExitsWith(3),
		That(`exit 0`).DoesNothing(),
		// RETURN at the top level ends the program like EXIT.
		That(`say 'a'`, `return`, `say 'b'`).Prints("a\n"),
		That(`return 7`).ExitsWith(7),
		That(`exit 'x'`).ThrowsCond(eval.CondSyntax),
		That(`exit 1.5`).ThrowsCond(eval.CondSyntax),
	)
}

func TestNumericStmt(t *testing.T) {
	Test(t,
		That(`numeric digits 3`, `say 2 / 3`).Prints("0.667\n"),
		That(`numeric digits 0`).ThrowsCond(eval.CondSyntax),
		That(`numeric fuzz 9`).ThrowsCond(eval.CondSyntax),
		That(`numeric digits 'x'`).ThrowsCond(eval.CondSyntax),
		// Routine frames inherit the caller's settings and restore them on
		// return.
		That(
			`numeric digits 3`,
			`call f`,
			`say 2 / 3`,
			`exit`,
			`f:`,
			`say 2 / 3`,
			`numeric digits 5`,
			`return`,
		).Prints("0.667\n0.667\n"),
	)
}

func TestDropNop(t *testing.T) {
	Test(t,
		That(`x = 1`, `y = 2`, `drop x y`, `say y`).ThrowsCond(eval.CondNoValue),
		That(`nop`).DoesNothing(),
	)
}
