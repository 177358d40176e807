package eval_test

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval/errs"

	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestBuiltinFnStr(t *testing.T) {
	Test(t,
		That(`say length('hello')`).Prints("5\n"),
		That(`say length('')`).Prints("0\n"),

		That(`say substr('hello', 2)`).Prints("ello\n"),
		That(`say substr('hello', 2, 3)`).Prints("ell\n"),
		That(`say substr('abc', 2, 5, '*')`).Prints("bc***\n"),
		That(`say substr('abc', 7, 2)`).Prints("  \n"),
		That(`say substr('abc', 0)`).Throws(ErrorWithType(errs.BadValue{})),

		That(`say left('abc', 2)`).Prints("ab\n"),
		That(`say left('abc', 5, '.')`).Prints("abc..\n"),
		That(`say right('abc', 2)`).Prints("bc\n"),
		That(`say right('abc', 5, '.')`).Prints("..abc\n"),
		That(`say right('abc', 0)`).Prints("\n"),

		That(`say pos('b', 'abcabc')`).Prints("2\n"),
		That(`say pos('b', 'abcabc', 3)`).Prints("5\n"),
		That(`say pos('x', 'abc')`).Prints("0\n"),
		That(`say pos('', 'abc')`).Prints("0\n"),
		That(`say lastpos('b', 'abcabc')`).Prints("5\n"),
		That(`say lastpos('b', 'abcabc', 4)`).Prints("2\n"),
		That(`say lastpos('x', 'abc')`).Prints("0\n"),

		That(`say copies('ab', 3)`).Prints("ababab\n"),
		That(`say copies('ab', 0)`).Prints("\n"),
		That(`say copies('ab', -1)`).Throws(ErrorWithType(errs.BadValue{})),

		That(`say reverse('abc')`).Prints("cba\n"),

		That(`say strip('  x  ')`).Prints("x\n"),
		That(`say strip('  x  ', 'L')`).Prints("x  \n"),
		That(`say strip('  x  ', 'T')`).Prints("  x\n"),
		That(`say strip('--x--', 'B', '-')`).Prints("x\n"),
		That(`say strip('x', 'Q')`).Throws(ErrorWithType(errs.BadValue{})),

		That(`say space('  a   b  c ')`).Prints("a b c\n"),
		That(`say space('a b', 0)`).Prints("ab\n"),
		That(`say space(' a  b ', 2, '-')`).Prints("a--b\n"),

		That(`say translate('abCd')`).Prints("ABCD\n"),
		That(`say translate('abcb', '12', 'ab')`).Prints("12c2\n"),
		That(`say translate('abc', '1', 'ab', '*')`).Prints("1*c\n"),

		That(`say upper('abC')`).Prints("ABC\n"),
		That(`say lower('AbC')`).Prints("abc\n"),

		That(`say word('a bb  ccc', 2)`).Prints("bb\n"),
		That(`say word('a bb  ccc', 4)`).Prints("\n"),
		That(`say words(' a bb  ccc ')`).Prints("3\n"),
		That(`say words('')`).Prints("0\n"),
		That(`say subword('a bb  ccc dd', 2)`).Prints("bb  ccc dd\n"),
		That(`say subword('a bb  ccc dd', 2, 2)`).Prints("bb  ccc\n"),
		That(`say subword('a bb', 3)`).Prints("\n"),
		That(`say wordpos('bb ccc', 'a bb ccc dd')`).Prints("2\n"),
		That(`say wordpos('bb ccc', 'a bb ccc bb ccc', 3)`).Prints("4\n"),
		That(`say wordpos('xx', 'a bb ccc')`).Prints("0\n"),

		That(`say center('ab', 6, '*')`).Prints("**ab**\n"),
		That(`say center('ab', 5, '*')`).Prints("*ab**\n"),
		That(`say centre('abcdef', 4)`).Prints("bcde\n"),

		That(`say d2x(255)`).Prints("FF\n"),
		That(`say d2x(0)`).Prints("0\n"),
		That(`say d2x(-1)`).Throws(ErrorWithType(errs.BadValue{})),
		That(`say x2d('ff')`).Prints("255\n"),
		That(`say x2d('')`).Prints("0\n"),
		That(`say x2d('zz')`).Throws(ErrorWithType(errs.BadValue{})),

		That(`say length('a', 'b')`).Throws(ErrorWithType(errs.ArityMismatch{})),
	)
}
