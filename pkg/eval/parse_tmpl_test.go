package eval_test

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"

	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestParseVar(t *testing.T) {
	Test(t,
		That(
			`s = 'one two three'`,
			`parse var s first rest`,
			`say first`,
			`say rest`,
		).Prints("one\ntwo three\n"),
		// A single target takes the source verbatim.
		That(
			`s = ' padded '`,
			`parse var s all`,
			`say '['all']'`,
		).Prints("[ padded ]\n"),
		// The last target keeps the rest minus one delimiting blank.
		That(
			`s = 'a  b  c'`,
			`parse var s first rest`,
			`say '['rest']'`,
		).Prints("[ b  c]\n"),
		// Leading blanks are skipped when scanning words.
		That(
			`s = '   x y'`,
			`parse var s first rest`,
			`say first';'rest`,
		).Prints("x;y\n"),
		// A dot consumes a word without assigning it.
		That(
			`s = 'a b c d'`,
			`parse var s first . rest`,
			`say first';'rest`,
		).Prints("a;c d\n"),
		That(
			`s = 'keep'`,
			`parse var s .`,
			`say s`,
		).Prints("keep\n"),
		// More targets than words leaves the surplus empty.
		That(
			`s = 'only'`,
			`parse var s a b c`,
			`say '['a']['b']['c']'`,
		).Prints("[only][][]\n"),
		That(
			`s = 'mixed Case'`,
			`parse upper var s w1 w2`,
			`say w1 w2`,
		).Prints("MIXED CASE\n"),
		// The source variable itself is left alone.
		That(
			`s = 'a b'`,
			`parse var s x y`,
			`say s`,
		).Prints("a b\n"),
		That(`parse var nope x`).ThrowsCond(eval.CondNoValue),
	)
}

func TestParsePatterns(t *testing.T) {
	Test(t,
		That(
			`s = '1,2,3'`,
			`parse var s a ',' b ',' c`,
			`say a';'b';'c`,
		).Prints("1;2;3\n"),
		// Text before the next pattern is split into words as usual.
		That(
			`s = 'cmd arg1 arg2 | tail part'`,
			`parse var s verb rest '|' after`,
			`say verb';'rest`,
			`say '['after']'`,
		).Prints("cmd;arg1 arg2 \n[ tail part]\n"),
		// A pattern that never matches ends the segment at the end of the
		// source and leaves the remaining targets empty.
		That(
			`s = 'x y'`,
			`parse var s a ';' b`,
			`say '['a']['b']'`,
		).Prints("[x y][]\n"),
		// A leading pattern strips a prefix.
		That(
			`s = '>>hello world'`,
			`parse var s '>>' w rest`,
			`say w';'rest`,
		).Prints("hello;world\n"),
		That(
			`s = 'key=value'`,
			`parse var s k '=' v`,
			`say k v`,
		).Prints("key value\n"),
		// Patterns match literally, not per word.
		That(
			`s = 'a-b - c'`,
			`parse var s x ' - ' y`,
			`say x';'y`,
		).Prints("a-b;c\n"),
	)
}

func TestParseValueArg(t *testing.T) {
	Test(t,
		That(
			`parse value 1 + 2 with x`,
			`say x`,
		).Prints("3\n"),
		That(
			`greeting = 'hi there'`,
			`parse value greeting with a b`,
			`say b a`,
		).Prints("there hi\n"),
		That(
			`parse upper value 'ab' || 'cd' with x`,
			`say x`,
		).Prints("ABCD\n"),
		That(
			`parse value 'a,b' with x ',' y`,
			`say y x`,
		).Prints("b a\n"),
		That(`parse value 'x' y`).DoesNotParse(),
		That(`parse alpha`).DoesNotParse(),
	)
	Test(t,
		That(
			`parse arg a b`,
			`say a';'b`,
		).WithArgs("alpha", "beta gamma").Prints("alpha;beta gamma\n"),
		That(
			`parse upper arg w`,
			`say w`,
		).WithArgs("quiet").Prints("QUIET\n"),
		// Inside a routine, ARG is the routine's own argument list.
		That(
			`call f 'x', 'y'`,
			`exit`,
			`f:`,
			`parse arg p q`,
			`say p'+'q`,
		).WithArgs("outer").Prints("x+y\n"),
	)
}
