package jsonfns

import (
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	. "github.com/rexlang/rex/pkg/eval/evaltest"
)

func TestJSONParse(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("json", Def) }
	TestWithSetup(t, setup,
		That(`require 'registry:json'`,
			`say jsonparse('{"port": 8080, "name": "db"}', 'CFG.')`,
			`say cfg.port cfg.name`).Prints("2\n8080 db\n"),
		That(`require 'registry:json'`,
			`n = jsonparse('[10, 20, 30]', 'A.')`,
			`do i = 1 to a.0`,
			`  say a.i`,
			`end`).Prints("10\n20\n30\n"),
		That(`require 'registry:json'`,
			`call jsonparse '{"up": true, "down": false, "none": null}', 'F.'`,
			`say f.up f.down '<'f.none'>'`).Prints("1 0 <>\n"),
		That(`require 'registry:json'`,
			`say jsonparse('{"db": {"host": "local"}}', 'J.')`,
			`say j.db.host`).Prints("1\nlocal\n"),
		// A trailing dot on the stem argument is optional.
		That(`require 'registry:json'`,
			`call jsonparse '{"a": 1}', 'X'`,
			`say x.a`).Prints("1\n"),
		// Numbers keep their source form instead of going through float64.
		That(`require 'registry:json'`,
			`call jsonparse '{"n": 10000000000000000001}', 'B.'`,
			`say b.n`).Prints("10000000000000000001\n"),
		That(`require 'registry:json'`, `say jsonparse('{', 'J.')`).
			Throws(ErrorWithMessage("invalid JSON: unexpected EOF"),
				`jsonparse('{', 'J.')`),
		That(`require 'registry:json'`, `say jsonparse('1 2', 'J.')`).
			Throws(ErrorWithMessage("invalid JSON: trailing data after the document")),
		That(`require 'registry:json'`, `say jsonparse('1', '.')`).
			Throws(ErrorWithMessage("empty stem name")),
	)
}

func TestJSONStringifyAndQuery(t *testing.T) {
	setup := func(ev *eval.Evaler) { ev.AddModule("json", Def) }
	TestWithSetup(t, setup,
		That(`require 'registry:json'`,
			`say jsonstringify('plain')`).Prints("\"plain\"\n"),
		That(`require 'registry:json'`,
			`say jsonstringify('he said "go"')`).Prints("\"he said \\\"go\\\"\"\n"),

		That(`require 'registry:json'`,
			`say jsonquery('{"a": {"b": 2}}', '.a.b')`).Prints("2\n"),
		// String results come back raw, one per line.
		That(`require 'registry:json'`,
			`say jsonquery('["x", "y"]', '.[]')`).Prints("x\ny\n"),
		That(`require 'registry:json'`,
			`say jsonquery('[{"n": 1}, {"n": 2}]', '.[].n')`).Prints("1\n2\n"),
		That(`require 'registry:json'`,
			`say jsonquery('{"a": 1}', '.missing')`).Prints("null\n"),
		That(`require 'registry:json'`,
			`say jsonquery('{}', '.a[')`).ThrowsCond(eval.CondSyntax),
		That(`require 'registry:json'`,
			`say jsonquery('3', '.a')`).ThrowsCond(eval.CondSyntax),
		That(`require 'registry:json'`,
			`say jsonquery('nope', '.')`).ThrowsCond(eval.CondSyntax),
	)
}
