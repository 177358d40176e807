// Package progtest provides utilities for testing subprograms.
//
// The entry point of this package is Test; a test roughly reads like this:
//
//	Test(t, someProgram{},
//	    ThatRex("-flag").WritesStdout("out"),
//	)
package progtest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rexlang/rex/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	stdout   output
	stderr   output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return fmt.Sprintf("text containing %q", o.content)
	}
	return fmt.Sprintf("%q", o.content)
}

// ThatRex returns a new Case with the given command-line arguments.
func ThatRex(args ...string) Case {
	return Case{args: append([]string{"rex"}, args...)}
}

// WithStdin returns an altered Case that will use the given string as stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatRex("-c", "nop").DoesNothing()
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program
// run to write output to stdout containing the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program
// run to write output to stderr containing the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.args, c.stdin)
			if r.exitCode != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", r.exitCode, c.want.exitCode)
			}
			if !matchOutput(r.stdout, c.want.stdout) {
				t.Errorf("got stdout %q, want %s", r.stdout.content, c.want.stdout)
			}
			if !matchOutput(r.stderr, c.want.stderr) {
				t.Errorf("got stderr %q, want %s", r.stderr.content, c.want.stderr)
			}
		})
	}
}

func matchOutput(got, want output) bool {
	if want.partial {
		return strings.Contains(got.content, want.content)
	}
	return got.content == want.content
}

// Run runs the program with the given arguments, and returns its exit code
// and what it wrote to stdout and stderr. The first element of args is the
// program name itself.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r := run(p, args, "")
	return r.exitCode, r.stdout.content, r.stderr.content
}

// Runs the program with the given arguments and stdin content, capturing its
// exit code and output. The first element of args is the program name itself.
// The stdin content must fit in the OS pipe buffer as it is written before
// the program runs.
func run(p prog.Program, args []string, stdin string) result {
	stdinR, stdinW := mustPipe()
	stdinW.WriteString(stdin)
	stdinW.Close()

	stdoutR, stdoutW := mustPipe()
	stdoutDone := saveOutput(stdoutR)
	stderrR, stderrW := mustPipe()
	stderrDone := saveOutput(stderrR)

	exit := prog.Run([3]*os.File{stdinR, stdoutW, stderrW}, args, p)

	stdinR.Close()
	stdoutW.Close()
	stderrW.Close()
	return result{exit, output{content: <-stdoutDone}, output{content: <-stderrDone}}
}

func mustPipe() (*os.File, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	return r, w
}

// Reads from r in a goroutine, so that the program under test never blocks on
// a full pipe buffer.
func saveOutput(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		r.Close()
		ch <- string(b)
	}()
	return ch
}
