// Package mods collects the bundled registry modules.
package mods

import (
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/mods/jsonfns"
	"github.com/rexlang/rex/pkg/mods/mathfns"
	"github.com/rexlang/rex/pkg/mods/sysaddr"
	"github.com/rexlang/rex/pkg/mods/yamlfns"
)

// AddTo adds the stateless bundled modules to the Evaler's registry.
// The sql and store modules carry configuration and are added by the
// embedding program; see sqladdr.New and storeaddr.New.
func AddTo(ev *eval.Evaler) {
	ev.AddModule("json", jsonfns.Def)
	ev.AddModule("yaml", yamlfns.Def)
	ev.AddModule("math", mathfns.Def)
	ev.AddModule("system", sysaddr.Def)
}
