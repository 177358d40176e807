package eval_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/testutil"

	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func statsModule() eval.ModuleDef {
	return eval.ModuleDef{
		ID: "test/stats",
		Functions: []eval.FuncSpec{
			{Name: "TRIPLE", Params: []string{"n"}, Descr: "triple a whole number",
				Impl: func(n int) string { return strconv.Itoa(3 * n) }},
		},
		Operations: []eval.FuncSpec{
			{Name: "RECORD", Params: []string{"item..."}, Descr: "join its operands",
				Impl: func(args ...string) string { return strings.Join(args, "|") }},
		},
	}
}

func useStats(ev *eval.Evaler) { ev.AddModule("stats", statsModule()) }

func okTarget(name string) eval.Target {
	return &testTarget{
		name: name,
		caps: eval.Capabilities{CommandString: true},
		handle: func(_ context.Context, _ eval.Call) (eval.Reply, error) {
			return eval.DoneReply(eval.Result{Success: true}), nil
		},
	}
}

func TestRequireRegistry(t *testing.T) {
	TestWithSetup(t, useStats,
		That(
			`require 'registry:stats'`,
			`say triple(7)`,
		).Prints("21\n"),
		// A bare name resolves against the registry too.
		That(
			`require 'stats'`,
			`say triple(2)`,
		).Prints("6\n"),
		// An operation is invoked like a command and reports through RESULT.
		That(
			`require 'stats'`,
			`record 'a' 'b'`,
			`say result`,
		).Prints("a|b\n"),
		// Loading the same canonical identity again is a no-op.
		That(
			`require 'registry:stats'`,
			`require 'stats'`,
			`require 'registry:stats'`,
			`say modules()`,
		).Prints("test/stats\n"),
		// Nothing is registered without a load.
		That(`say triple(7)`).ThrowsCond(eval.CondSyntax),
		That(`require 'registry:ghost'`).Throws(
			ErrorWithMessage("module ghost is not in the registry"),
			`require 'registry:ghost'`),
		That(`require 'ghost'`).Throws(
			ErrorWithMessage("module ghost not found"),
			`require 'ghost'`),
		That(`require ''`).Throws(
			ErrorWithMessage("empty module specifier"),
			`require ''`),
	)
}

func TestRequireConflicts(t *testing.T) {
	dup := func(id string) eval.ModuleDef {
		return eval.ModuleDef{
			ID: id,
			Functions: []eval.FuncSpec{
				{Name: "DUP", Impl: func() string { return id }},
			},
		}
	}
	TestWithSetup(t, func(ev *eval.Evaler) {
		ev.AddModule("one", dup("test/one"))
		ev.AddModule("two", dup("test/two"))
		ev.AddModule("shadow", eval.ModuleDef{
			ID: "test/shadow",
			Functions: []eval.FuncSpec{
				{Name: "LENGTH", Impl: func(s string) string { return s }},
			},
		})
		ev.AddModule("db1", eval.ModuleDef{ID: "test/db1", Target: okTarget("DB")})
		ev.AddModule("db2", eval.ModuleDef{ID: "test/db2", Target: okTarget("DB")})
	},
		That(
			`require 'one'`,
			`require 'two'`,
		).Throws(ErrorWithMessage(
			"function DUP is already provided by module test/one"),
			`require 'two'`),
		// The same name from the same canonical identity is not a conflict.
		That(
			`require 'one'`,
			`require 'registry:one'`,
			`say dup()`,
		).Prints("test/one\n"),
		That(`require 'shadow'`).Throws(
			ErrorWithMessage("function LENGTH would shadow a built-in"),
			`require 'shadow'`),
		That(
			`require 'db1'`,
			`address db`,
			`'ping'`,
			`say rc`,
		).Prints("0\n"),
		That(
			`require 'db1'`,
			`require 'db2'`,
		).Throws(ErrorWithMessage("address target DB is already registered"),
			`require 'db2'`),
	)
}

func TestRequireSourceModule(t *testing.T) {
	testutil.InTempDir(t)
	testutil.ApplyDir(t, testutil.Dir{
		"util.rex": testutil.Dedent(`
			calls = 0
			return

			UTIL_MAIN:
			return 'test/util'

			GREET:
			parse arg who
			return 'hello' who

			BUMP:
			calls = calls + 1
			return calls

			LOUD:
			say 'from module'
			return ''
			`),
		"noentry.rex": "x = 1\nreturn\n",
		"noid.rex":    "NOID_MAIN:\nreturn\n",
		"loop.rex":    "require './loop.rex'\nreturn\nLOOP_MAIN:\nreturn 'test/loop'\n",
		"lib": testutil.Dir{
			"tools.rex": testutil.Dedent(`
				TOOLS_MAIN:
				return 'test/tools'

				SQ:
				parse arg n
				return n * n
				`),
		},
	})
	Test(t,
		That(
			`require './util.rex'`,
			`say greet('world')`,
		).Prints("hello world\n"),
		// The extension may be omitted.
		That(
			`require './util'`,
			`say greet('x')`,
		).Prints("hello x\n"),
		// Module-level state persists between calls.
		That(
			`require './util.rex'`,
			`say bump()`,
			`say bump()`,
		).Prints("1\n2\n"),
		// Module routines are ordinary functions for CALL too.
		That(
			`require './util.rex'`,
			`call greet 'via call'`,
			`say result`,
		).Prints("hello via call\n"),
		// Output from a module routine goes to the calling script.
		That(
			`require './util.rex'`,
			`x = loud()`,
			`say '['x']'`,
		).Prints("from module\n[]\n"),
		// Two specifiers for the same file register one module.
		That(
			`require './util.rex'`,
			`require './util'`,
			`say modules()`,
		).Prints("test/util\n"),
		That(`require './noentry.rex'`).Throws(
			ErrorWithMessage("module noentry.rex does not define NOENTRY_MAIN"),
			`require './noentry.rex'`),
		That(`require './noid.rex'`).Throws(
			ErrorWithMessage("module noid.rex: NOID_MAIN did not return a module id"),
			`require './noid.rex'`),
		That(`require './loop.rex'`).Throws(
			ErrorWithMessage(
				"initialize module loop.rex: circular load of module ./loop.rex"),
			`require './loop.rex'`),
		That(`require './missing.rex'`).ThrowsCond(eval.CondSyntax),
	)
	// Bare names fall back to the library path.
	TestWithSetup(t, func(ev *eval.Evaler) {
		ev.SetLibPath([]string{"lib"})
	},
		That(
			`require 'tools'`,
			`say sq(4)`,
		).Prints("16\n"),
		That(
			`require 'tools'`,
			`require 'tools'`,
			`say modules()`,
		).Prints("test/tools\n"),
	)
}
