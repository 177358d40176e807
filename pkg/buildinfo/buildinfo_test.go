package buildinfo

import (
	"fmt"
	"testing"

	. "github.com/rexlang/rex/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	Test(t, Program{},
		ThatRex("-version").WritesStdout(Value.Version+"\n"),
		ThatRex("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),

		ThatRex("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\n", Value.Version, Value.GoVersion)),
		ThatRex("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),

		ThatRex().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}
