package yamlfns

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestYAMLParse(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("yaml", Def) }
	TestWithSetup(t, setup,
		That(`require 'registry:yaml'`,
			`doc = <<EOY`,
			`port: 8080`,
			`name: db`,
			`EOY`,
			`say yamlparse(doc, 'C.')`,
			`say c.port c.name`).Prints("2\n8080 db\n"),
		That(`require 'registry:yaml'`,
			`doc = <<EOY`,
			`servers:`,
			`  - alpha`,
			`  - beta`,
			`EOY`,
			`call yamlparse doc, 'S.'`,
			`do i = 1 to s.servers.0`,
			`  say s.servers.i`,
			`end`).Prints("alpha\nbeta\n"),
		That(`require 'registry:yaml'`,
			`call yamlparse 'flag: true', 'F.'`,
			`say f.flag`).Prints("1\n"),
		That(`require 'registry:yaml'`,
			`say yamlparse('{', 'Y.')`).ThrowsCond(eval.CondSyntax),
	)
}

func TestYAMLGetAndStringify(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("yaml", Def) }
	TestWithSetup(t, setup,
		That(`require 'registry:yaml'`,
			`say yamlget('port: 8080', 'port')`).Prints("8080\n"),
		That(`require 'registry:yaml'`,
			`doc = <<EOY`,
			`server:`,
			`  host: local`,
			`EOY`,
			`say yamlget(doc, 'server.host')`).Prints("local\n"),
		// Upper-cased path parts still match lower-cased document keys.
		That(`require 'registry:yaml'`,
			`say yamlget('n: 1', 'N')`).Prints("1\n"),
		That(`require 'registry:yaml'`,
			`doc = <<EOY`,
			`- a`,
			`- b`,
			`EOY`,
			`say yamlget(doc, '2')`).Prints("b\n"),
		That(`require 'registry:yaml'`,
			`say yamlget('a: 1', 'nope')`).
			Throws(ErrorWithMessage("no value at path nope"),
				`yamlget('a: 1', 'nope')`),

		That(`require 'registry:yaml'`,
			`say yamlstringify('plain')`).Prints("plain\n"),
		That(`require 'registry:yaml'`,
			`say yamlstringify('a: b')`).Prints("'a: b'\n"),
	)
}
