package shell

import (
	"testing"

	. "github.com/rexlang/rex/pkg/prog/progtest"
)

func TestInteract_SingleInputs(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex().ExitsWith(0).WritesStderr(promptMain),
		ThatRex().WithStdin("say 'hi'\n").
			WritesStdout("hi\n").
			WritesStderr(promptMain+promptMain),
		ThatRex().WithStdin("say 1 + 2\n").
			WritesStdout("3\n"),
	)
}

func TestInteract_StatePersistsAcrossInputs(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex().WithStdin("x = 42\nsay x\n").WritesStdout("42\n"),
		ThatRex().WithStdin("numeric digits 3\nsay 2/3\n").
			WritesStdout("0.667\n"),
	)
}

func TestInteract_ContinuationPrompt(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		// An open DO block keeps prompting until END arrives.
		ThatRex().WithStdin("do 2\nsay 'x'\nend\n").
			WritesStdout("x\nx\n").
			WritesStderr(promptMain+promptCont+promptCont+promptMain),
		// An unterminated string reads as a continuation first; an empty
		// line moves the input past it and reports the error.
		ThatRex().WithStdin("say 'oops\n\nsay 'ok'\n").
			WritesStdout("ok\n").
			WritesStderrContaining("Parse error"),
	)
}

func TestInteract_Exit(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex().WithStdin("exit 3\nsay 'unreached'\n").
			ExitsWith(3).
			WritesStdout("").
			WritesStderr(promptMain),
		ThatRex().WithStdin("exit\nsay 'unreached'\n").
			ExitsWith(0).
			WritesStdout("").
			WritesStderr(promptMain),
	)
}

func TestInteract_ErrorsKeepSessionAlive(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, Program{},
		ThatRex().WithStdin("say novar\nsay 'after'\n").
			WritesStdout("after\n").
			WritesStderrContaining("Condition NOVALUE"),
		ThatRex().WithStdin("say )\nsay 'ok'\n").
			WritesStdout("ok\n").
			WritesStderrContaining("Parse error"),
	)
}
