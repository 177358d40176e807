package shell

import (
	"testing"

	"github.com/rexlang/rex/pkg/must"
	. "github.com/rexlang/rex/pkg/prog/progtest"
)

func TestScript(t *testing.T) {
	setupCleanHomePaths(t)
	must.WriteFile("hello.rex", "say 'hello'")
	must.WriteFile("invalid-utf8.rex", "\xff")

	Test(t, Program{},
		ThatRex("hello.rex").WritesStdout("hello\n"),
		ThatRex("-c", "say 'hello'").WritesStdout("hello\n"),
		ThatRex("-c", "say arg(1)", "first", "second").WritesStdout("first\n"),
		ThatRex("-c", "exit 3").ExitsWith(3),
		ThatRex("-c", "exit").DoesNothing(),

		ThatRex("non-existent.rex").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),
		ThatRex("invalid-utf8.rex").
			ExitsWith(2).
			WritesStderrContaining("source is not UTF-8"),

		ThatRex("-c", "say 'oops").
			ExitsWith(2).
			WritesStderrContaining("Parse error"),
		ThatRex("-c", "say novar").
			ExitsWith(1).
			WritesStdout("").
			WritesStderrContaining("Condition NOVALUE"),
	)
}

func TestScript_ParseOnly(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex("-parseonly", "-c", "say 'fine'").DoesNothing(),
		// Sound code is not run.
		ThatRex("-parseonly", "-c", "say novar").DoesNothing(),
		ThatRex("-parseonly", "-c", "say 'oops").
			ExitsWith(2).
			WritesStderrContaining("Parse error"),
		ThatRex("-parseonly", "-json", "-c", "say 'oops").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":4,"end":9,"message":"string not terminated"}]`+"\n"),
		ThatRex("-parseonly", "-json", "-c", "say 'oops\nsay 'twice").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":4,"end":9,"message":"string not terminated"},{"fileName":"code from -c","start":14,"end":20,"message":"string not terminated"}]`+"\n"),
	)
}

func TestScript_BadUsage(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex("-c").
			ExitsWith(2).
			WritesStderrContaining("-c requires an argument"),
		ThatRex("-parseonly").
			ExitsWith(2).
			WritesStderrContaining("-parseonly requires a script or -c code"),
		ThatRex("-watch").
			ExitsWith(2).
			WritesStderrContaining("-watch requires a script"),
		ThatRex("-watch", "-c", "say 'hi'").
			ExitsWith(2).
			WritesStderrContaining("-watch cannot be used with -c"),
	)
}
