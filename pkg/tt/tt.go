// Package tt supports table-driven tests with little boilerplate.
//
// A typical use:
//
//	tt.Test(t, tt.Fn("Add", Add), tt.Table{
//		tt.Args(1, 2).Rets(3),
//	})
package tt

import (
	"fmt"
	"reflect"
	"strings"
)

// Table is a list of test cases.
type Table []*Case

// Case is one test case: arguments to call the function with, and matchers
// for the expected return values.
type Case struct {
	args []any
	rets []any
}

// Args starts a new Case with the given arguments.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Rets sets the expected return values and returns the Case itself. Each
// expected value may implement [Matcher] to customize matching; otherwise
// reflect.DeepEqual is used.
func (c *Case) Rets(rets ...any) *Case {
	c.rets = rets
	return c
}

// FnDescr describes the function under test.
type FnDescr struct {
	name string
	body any
}

// Fn describes a function with a name for error messages.
func Fn(name string, body any) FnDescr {
	return FnDescr{name, body}
}

// T is the subset of *testing.T used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test calls the function against each case in the table and reports
// mismatches.
func Test(t T, fn FnDescr, table Table) {
	t.Helper()
	for _, c := range table {
		rets := call(fn.body, c.args)
		if !match(c.rets, rets) {
			t.Errorf("%s(%s) -> %s, want %s",
				fn.name, sprintList(c.args), sprintList(rets), sprintList(c.rets))
		}
	}
}

// Matcher allows a test case to match return values other than by deep
// equality.
type Matcher interface {
	// Match reports whether an actual return value is acceptable.
	Match(ret any) bool
}

// Any matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(any) bool { return true }

func match(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i, w := range want {
		if m, ok := w.(Matcher); ok {
			if !m.Match(got[i]) {
				return false
			}
		} else if !reflect.DeepEqual(w, got[i]) {
			return false
		}
	}
	return true
}

func call(body any, args []any) []any {
	argValues := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) is invalid; pass a typed nil through an
			// addressable interface value instead.
			var v any
			argValues[i] = reflect.ValueOf(&v).Elem()
		} else {
			argValues[i] = reflect.ValueOf(arg)
		}
	}
	retValues := reflect.ValueOf(body).Call(argValues)
	rets := make([]any, len(retValues))
	for i, rv := range retValues {
		rets[i] = rv.Interface()
	}
	return rets
}

func sprintList(values []any) string {
	if len(values) == 1 {
		return fmt.Sprint(values[0])
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteByte(')')
	return sb.String()
}
