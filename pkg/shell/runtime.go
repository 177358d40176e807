package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rexlang/rex/pkg/daemon"
	"github.com/rexlang/rex/pkg/env"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/mods"
	"github.com/rexlang/rex/pkg/mods/sqladdr"
	"github.com/rexlang/rex/pkg/mods/storeaddr"
	"github.com/rexlang/rex/pkg/mods/sysaddr"
	"github.com/rexlang/rex/pkg/store"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

// InitEvaler creates an Evaler wired up the way the shell uses it: the
// bundled registry modules, the SYSTEM target pre-registered so that the
// default address works without a REQUIRE, REQUIRE's search path from
// REXX_PATH plus the configuration, and the store, sql and daemon modules
// when the configuration names them. The store, if one is open, is also
// returned so that the caller can append to the run log. The returned
// function releases whatever the wiring opened.
func InitEvaler(rc *RC, stderr io.Writer) (*eval.Evaler, storedefs.Store, func()) {
	ev := eval.NewEvaler()
	mods.AddTo(ev)
	ev.RegisterTarget(sysaddr.Def.Target)

	libPath := filepath.SplitList(os.Getenv(env.REXX_PATH))
	libPath = append(libPath, rc.LibPath...)
	ev.SetLibPath(libPath)

	var cleanups []func()
	var st storedefs.Store
	if rc.StoreDB != "" {
		var err error
		st, err = store.NewStore(rc.StoreDB)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: cannot open store %s: %v\n", rc.StoreDB, err)
		} else {
			ev.AddModule("store", storeaddr.New(st))
			cleanups = append(cleanups, func() { st.Close() })
		}
	}
	if rc.SQL.Driver != "" || rc.SQL.DSN != "" {
		driver := rc.SQL.Driver
		if driver == "" {
			driver = "mysql"
		}
		ev.AddModule("sql", sqladdr.New(driver, rc.SQL.DSN))
	}
	if rc.Daemon.Sock != "" {
		name := rc.Daemon.Target
		if name == "" {
			name = "store"
		}
		client, target := daemon.Dial(rc.Daemon.Sock, name, ev.Hub)
		if err := ev.RegisterTarget(target); err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
			client.Close()
		} else {
			logger.Printf("daemon target %s at %s", target.Name(), rc.Daemon.Sock)
			cleanups = append(cleanups, func() { client.Close() })
		}
	}

	return ev, st, func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}
}
