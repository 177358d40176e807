package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd       bool
	ParseOnly bool
	JSON      bool
	Watch     bool

	stop <-chan struct{} // Ends watch mode. Used in tests.
}

// script runs a script file or the code given with -c and returns the
// process exit status: the EXIT status of the script, 1 for an uncaught
// condition, 2 when the script cannot be read or parsed.
func script(fds [3]*os.File, args []string, sess *session, cfg *scriptCfg) int {
	if cfg.Watch {
		return watchScript(fds, args, sess, cfg)
	}
	return runScript(fds, args, sess, cfg)
}

func runScript(fds [3]*os.File, args []string, sess *session, cfg *scriptCfg) int {
	arg0 := args[0]

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	src := parse.Source{Name: name, Code: code, IsFile: !cfg.Cmd}
	tree, parseErr := parse.Parse(src)
	if cfg.ParseOnly {
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(parseErr))
		} else if parseErr != nil {
			diag.ShowError(fds[2], parseErr)
		}
		if parseErr != nil {
			return 2
		}
		return 0
	}
	if parseErr != nil {
		diag.ShowError(fds[2], parseErr)
		return 2
	}

	ev, st, cleanup := InitEvaler(sess.rc, fds[2])
	defer cleanup()
	if st != nil && !cfg.Cmd {
		// Code given with -c is not recorded.
		if _, err := st.AddRun(name, time.Now()); err != nil {
			logger.Println("cannot append to the run log:", err)
		}
	}
	err := ev.Eval(tree, sess.evalCfg(fds[1], args[1:]))
	if err != nil {
		if exit, ok := err.(eval.ExitStatus); ok {
			return exit.Status
		}
		diag.ShowError(fds[2], err)
		return 1
	}
	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts parse errors into JSON.
func errorsToJSON(parseErr error) []byte {
	var converted []errorInJSON
	for _, e := range parse.UnpackErrors(parseErr) {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
