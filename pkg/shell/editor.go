package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/rexlang/rex/pkg/strutil"
)

// The interface the interactive loop reads input with. The line editor is
// behind it so that the loop can also run without a terminal.
type editor interface {
	// ReadLine reads one line, prompting with the given prompt. It returns
	// io.EOF at the end of input and errInputAborted when the user
	// abandoned the current input.
	ReadLine(prompt string) (string, error)
	// AppendHistory records an accepted piece of input.
	AppendHistory(code string)
	Close()
}

var errInputAborted = errors.New("input aborted")

// linerEditor reads lines with the liner line editor. History persists in
// histPath between sessions; an empty path disables that.
type linerEditor struct {
	state    *liner.State
	histPath string
}

func newLinerEditor(histPath string) *linerEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
	}
	return &linerEditor{state, histPath}
}

func (ed *linerEditor) ReadLine(prompt string) (string, error) {
	line, err := ed.state.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", errInputAborted
	}
	return line, err
}

func (ed *linerEditor) AppendHistory(code string) {
	ed.state.AppendHistory(strings.ReplaceAll(code, "\n", " "))
}

func (ed *linerEditor) Close() {
	if ed.histPath != "" {
		if f, err := os.Create(ed.histPath); err == nil {
			ed.state.WriteHistory(f)
			f.Close()
		}
	}
	ed.state.Close()
}

// historyPath returns the path the REPL history persists in, or "" when
// there is no home to keep it in.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rex_history")
}

// minEditor reads lines with no editing capability, for use when stdin is
// not a terminal.
type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// Use the last line even if it misses the line ending.
		err = nil
	}
	return strutil.ChopLineEnding(line), err
}

func (ed *minEditor) AppendHistory(string) {}

func (ed *minEditor) Close() {}
