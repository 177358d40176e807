package shell

import (
	"testing"

	"github.com/rexlang/rex/pkg/env"
	"github.com/rexlang/rex/pkg/must"
	. "github.com/rexlang/rex/pkg/prog/progtest"
	"github.com/rexlang/rex/pkg/testutil"
)

func TestRC_NumericDefaults(t *testing.T) {
	setupCleanHomePaths(t)
	must.WriteFile("rex.yaml", "digits: 3\n")
	must.WriteFile("bad.yaml", "digits: [\n")
	must.WriteFile("fuzzy.yaml", "digits: 3\nfuzz: 5\n")

	Test(t, Program{},
		ThatRex("-rc", "rex.yaml", "-c", "say 2/3").WritesStdout("0.667\n"),
		// Without an rc file the default context applies.
		ThatRex("-norc", "-c", "say 2/3").WritesStdout("0.666666667\n"),
		// -norc wins over -rc.
		ThatRex("-norc", "-rc", "rex.yaml", "-c", "say 2/3").
			WritesStdout("0.666666667\n"),
		// A missing rc file is not an error.
		ThatRex("-rc", "no-such.yaml", "-c", "say 2/3").
			WritesStdout("0.666666667\n"),
		// A broken rc file warns and runs with defaults.
		ThatRex("-rc", "bad.yaml", "-c", "say 2/3").
			WritesStdout("0.666666667\n").
			WritesStderrContaining("Warning:"),
		// An impossible numeric context is ignored as a whole.
		ThatRex("-rc", "fuzzy.yaml", "-c", "say 2/3").
			WritesStdout("0.666666667\n").
			WritesStderrContaining("fuzz must be from 0 to digits-1"),
	)
}

func TestRC_Store(t *testing.T) {
	setupCleanHomePaths(t)
	must.WriteFile("rex.yaml", "storedb: store.db\n")
	must.WriteFile("logged.rex", "x = 1\n")

	Test(t, Program{},
		ThatRex("-rc", "rex.yaml", "-c",
			"require 'registry:store'; address store; 'set greeting hello'; 'get greeting'; say result").
			WritesStdout("hello\n"),
		// The -db flag needs no rc file.
		ThatRex("-norc", "-db", "flag.db", "-c",
			"require 'registry:store'; address store; 'set k v'; 'get k'; say result").
			WritesStdout("v\n"),
		// The flag overrides the rc file.
		ThatRex("-rc", "rex.yaml", "-db", "other.db", "-c",
			"require 'registry:store'; address store; 'get greeting'; say '['result']'").
			WritesStdout("[]\n"),
		// A script run lands in the run log; code from -c does not.
		ThatRex("-norc", "-db", "runs.db", "logged.rex").DoesNothing(),
		ThatRex("-norc", "-db", "runs.db", "-c",
			"require 'registry:store'; address store; 'runs'; say pos('logged.rex', result) > 0; say pos('code from', result)").
			WritesStdout("1\n0\n"),
	)
}

func TestRC_LibPath(t *testing.T) {
	setupCleanHomePaths(t)
	testutil.ApplyDir(t, testutil.Dir{
		"libs": testutil.Dir{
			"tools.rex": testutil.Dedent(`
				TOOLS_MAIN:
				return 'local/tools'

				DOUBLE:
				parse arg n
				return n + n
				`),
		},
	})
	must.WriteFile("rex.yaml", "libpath: [libs]\n")
	testutil.Setenv(t, env.REXX_PATH, "libs")

	Test(t, Program{},
		// From the rc file.
		ThatRex("-rc", "rex.yaml", "-c", "require 'tools'; say double(4)").
			WritesStdout("8\n"),
		// From the environment.
		ThatRex("-norc", "-c", "require 'tools'; say double(21)").
			WritesStdout("42\n"),
	)
}
