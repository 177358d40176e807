// Package evaltest provides a framework for testing Rex script.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method
// calls that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("say x").Prints("x\n"),
//	    That("exit 3").ExitsWith(3))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/parse"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes  []string
	args   []string
	setup  func(ev *eval.Evaler)
	verify func(t *testing.T)
	want   result
}

type result struct {
	BytesOut []byte

	ParseError error
	Exception  error
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// executed separately, use the Then method to append code pieces.
//
// When combined with subsequent method calls, a test case reads like
// English. For example, a test for the fact that "say x" prints "x" reads:
//
//	That("say x").Prints("x\n")
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that executes the given code in addition, against
// the same Evaler. Multiple arguments are joined with newlines.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// WithArgs returns a new Case whose code runs with the given script
// arguments.
func (c Case) WithArgs(args ...string) Case {
	c.args = args
	return c
}

// DoesNothing returns c unchanged. It is useful to mark tests that don't
// have any side effects, for example:
//
//	That("nop").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// Passes returns an altered Case that runs an additional verification
// function after the code is executed.
func (c Case) Passes(f func(t *testing.T)) Case {
	c.verify = f
	return c
}

// Prints returns an altered Case that requires the source code to produce
// the specified output when evaluated.
func (c Case) Prints(s string) Case {
	c.want.BytesOut = []byte(s)
	return c
}

// Throws returns an altered Case that requires the source code to throw an
// exception with the given reason. The reason supports special matcher
// values constructed by functions like ErrorWithMessage.
//
// If at least one stacktrace string is given, the exception must also have a
// stacktrace matching the given source fragments, frame by frame (innermost
// frame first). If no stacktrace string is given, the stack trace of the
// exception is not checked.
func (c Case) Throws(reason error, stacks ...string) Case {
	c.want.Exception = exc{reason, stacks}
	return c
}

// ThrowsCond returns an altered Case that requires the source code to throw
// an exception with the given condition name, regardless of the reason.
func (c Case) ThrowsCond(cond string) Case {
	c.want.Exception = excCond{cond}
	return c
}

// ExitsWith returns an altered Case that requires the source code to end the
// script with EXIT and the given status.
func (c Case) ExitsWith(status int) Case {
	c.want.Exception = eval.ExitStatus{Status: status}
	return c
}

// DoesNotParse returns an altered Case that requires the source code to fail
// parsing.
func (c Case) DoesNotParse() Case {
	c.want.ParseError = anyError{}
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			ev := eval.NewEvaler()
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			r := evalAndCollect(ev, tc.codes, tc.args)

			if tc.verify != nil {
				tc.verify(t)
			}
			if !bytes.Equal(tc.want.BytesOut, r.BytesOut) {
				t.Errorf("got output %q, want %q", r.BytesOut, tc.want.BytesOut)
			}
			if !matchErr(tc.want.ParseError, r.ParseError) {
				t.Errorf("got parse error %v, want %v",
					r.ParseError, tc.want.ParseError)
			}
			if !matchErr(tc.want.Exception, r.Exception) {
				t.Errorf("unexpected exception")
				if exc, ok := r.Exception.(eval.Exception); ok {
					// For an eval.Exception report the type of the underlying
					// error.
					t.Logf("got: %T: %v", exc.Reason(), exc)
					t.Logf("stack trace: %#v", getStackTexts(exc.StackTrace()))
				} else {
					t.Logf("got: %T: %v", r.Exception, r.Exception)
				}
				t.Errorf("want: %v", tc.want.Exception)
			}
		})
	}
}

func evalAndCollect(ev *eval.Evaler, texts, args []string) result {
	var r result
	out := new(bytes.Buffer)

	for _, text := range texts {
		tree, err := parse.Parse(parse.Source{Name: "[test]", Code: text})
		if err != nil {
			// NOTE: If multiple code pieces fail to parse, only the last
			// parse error is saved.
			r.ParseError = err
			continue
		}
		err = ev.Eval(tree, eval.EvalCfg{Stdout: out, Args: args})
		if err != nil {
			// NOTE: If multiple code pieces throw exceptions, only the last
			// one is saved.
			r.Exception = err
		}
	}
	r.BytesOut = out.Bytes()
	return r
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return reflect.DeepEqual(want, got)
}
