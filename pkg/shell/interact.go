package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/rexlang/rex/pkg/buildinfo"
	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/parse"
)

const (
	promptMain = "rex> "
	promptCont = "...> "
)

// interact runs an interactive session: one shared evaluation session, a
// line editor when stdin is a terminal, and plain line reading otherwise.
// EXIT ends the session with its status.
func interact(fds [3]*os.File, sess *session) int {
	ev, _, cleanup := InitEvaler(sess.rc, fds[2])
	defer cleanup()
	es := ev.NewSession(sess.evalCfg(fds[1], nil))

	var ed editor
	if isatty.IsTerminal(fds[0].Fd()) {
		fmt.Fprintf(fds[2], "Rex %s (Ctrl-D to exit)\n", buildinfo.Value.Version)
		ed = newLinerEditor(historyPath())
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	defer ed.Close()

	cmdNum := 0
	for {
		cmdNum++
		code, err := readCode(ed)
		if err == io.EOF {
			return 0
		} else if err == errInputAborted {
			continue
		} else if err != nil {
			fmt.Fprintln(fds[2], "error reading input:", err)
			return 2
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ed.AppendHistory(code)

		tree, err := parse.Parse(parse.Source{
			Name: fmt.Sprintf("[tty %v]", cmdNum), Code: code})
		if err != nil {
			diag.ShowError(fds[2], err)
			continue
		}
		err = es.Eval(tree)
		if err != nil {
			if exit, ok := err.(eval.ExitStatus); ok {
				return exit.Status
			}
			diag.ShowError(fds[2], err)
		}
	}
}

// readCode reads one complete piece of input, prompting for more lines
// while the input only fails to parse by running into its end.
func readCode(ed editor) (string, error) {
	var sb strings.Builder
	for {
		prompt := promptMain
		if sb.Len() > 0 {
			prompt = promptCont
		}
		line, err := ed.ReadLine(prompt)
		if err == io.EOF && sb.Len() > 0 {
			// Evaluating the incomplete input reports where it breaks.
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		if !needsMore(sb.String()) {
			return sb.String(), nil
		}
	}
}

// needsMore reports whether all of the code's parse problems come from
// running into the end of input, so that more lines could complete it.
func needsMore(code string) bool {
	_, err := parse.Parse(parse.Source{Name: "[tty]", Code: code})
	if err == nil {
		return false
	}
	for _, e := range parse.UnpackErrors(err) {
		if !e.Partial {
			return false
		}
	}
	return true
}
