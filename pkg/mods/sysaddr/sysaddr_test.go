//go:build !windows

package sysaddr

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	. "github.com/rexlang/rex/pkg/eval/evaltest"
	"github.com/rexlang/rex/pkg/must"
	"github.com/rexlang/rex/pkg/testutil"
)

func TestSystemTarget(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("system", Def) }
	TestWithSetup(t, setup,
		That(`require 'registry:system'`,
			`address system`,
			`'echo hello'`,
			`say rc';'result`).Prints("0;hello\n"),
		// RC mirrors the command's exit status.
		That(`require 'registry:system'`,
			`address system`,
			`'exit 7'`,
			`say rc`).Prints("7\n"),
		// Trailing newlines are stripped, interior ones kept.
		That(`require 'registry:system'`,
			`address system`,
			`'printf "a\nb\n"'`,
			`say result`).Prints("a\nb\n"),
		That(`require 'registry:system'`,
			`address system`,
			`signal on error name oops`,
			`'exit 3'`,
			`say 'not reached'`,
			`oops:`,
			`say condition('C') rc`).Prints("ERROR 3\n"),
		// Interpolation happens before the shell sees the command.
		That(`require 'registry:system'`,
			`word = 'rex'`,
			`address system`,
			`"echo {word}"`,
			`say result`).Prints("rex\n"),
		That(`require 'registry:system'`,
			`address system`,
			`'true'`,
			`say rc`).Prints("0\n"),
	)
}

func TestSystemTarget_WritesFiles(t *testing.T) {
	testutil.InTempDir(t)
	setup := func(ev *eval.Evaler) { ev.AddModule("system", Def) }
	TestWithSetup(t, setup,
		// Commands run in the working directory and their effects persist.
		That(`require 'registry:system'`,
			`address system`,
			`'echo persisted > marker'`,
			`say rc`).Prints("0\n").
			Passes(func(t *testing.T) {
				if got, want := must.ReadFileString("marker"), "persisted\n"; got != want {
					t.Errorf("got marker content %q, want %q", got, want)
				}
			}),
	)
}
