package eval

import (
	"bytes"
	"fmt"

	"github.com/rexlang/rex/pkg/diag"
)

// Names of the conditions that can be raised and trapped.
const (
	CondError   = "ERROR"
	CondFailure = "FAILURE"
	CondHalt    = "HALT"
	CondNoValue = "NOVALUE"
	CondSyntax  = "SYNTAX"
)

// Exception represents a raised condition. It is returned by methods like
// (*Evaler).Eval when the condition was not trapped by the script.
type Exception interface {
	error
	diag.Shower
	// Condition returns the name of the condition, one of the Cond
	// constants.
	Condition() string
	Reason() error
	StackTrace() *StackTrace
	// This is not strictly necessary, but it makes sure that there is only
	// one implementation of Exception, so that the compiler may
	// de-virtualize this interface.
	isException()
}

// NewException creates a new Exception.
func NewException(cond string, reason error, stackTrace *StackTrace) Exception {
	return &exception{cond, reason, stackTrace}
}

// Implementation of the Exception interface.
type exception struct {
	cond       string
	reason     error
	stackTrace *StackTrace
}

// StackTrace represents a stack trace as a linked list of diag.Context. The
// head is the innermost frame.
type StackTrace struct {
	Head *diag.Context
	Next *StackTrace
}

// Reason returns the Reason field if err is an Exception. Otherwise it
// returns err itself.
func Reason(err error) error {
	if exc, ok := err.(*exception); ok {
		return exc.reason
	}
	return err
}

func (exc *exception) isException() {}

func (exc *exception) Condition() string { return exc.cond }

func (exc *exception) Reason() error { return exc.reason }

func (exc *exception) StackTrace() *StackTrace { return exc.stackTrace }

// Error returns the message of the cause of the exception.
func (exc *exception) Error() string { return exc.reason.Error() }

// Show shows the exception.
func (exc *exception) Show(indent string) string {
	buf := new(bytes.Buffer)

	var causeDescription string
	if shower, ok := exc.reason.(diag.Shower); ok {
		causeDescription = shower.Show(indent)
	} else {
		causeDescription = "\033[31;1m" + exc.reason.Error() + "\033[m"
	}
	fmt.Fprintf(buf, "Condition %s: %s", exc.cond, causeDescription)

	if exc.stackTrace != nil {
		buf.WriteString("\n")
		if exc.stackTrace.Next == nil {
			buf.WriteString(exc.stackTrace.Head.ShowCompact(indent))
		} else {
			buf.WriteString(indent + "Traceback:")
			for tb := exc.stackTrace; tb != nil; tb = tb.Next {
				buf.WriteString("\n" + indent + "  ")
				buf.WriteString(tb.Head.Show(indent + "    "))
			}
		}
	}

	return buf.String()
}

// Control flow signals travel as errors so that they unwind nested
// statement execution like exceptions do, but they are consumed by the
// enclosing loop (LEAVE, ITERATE), routine body (SIGNAL), call site
// (RETURN) or top level (EXIT) rather than reported.
type flowErr struct {
	kind flowKind
	// Loop counter name for the named forms of LEAVE and ITERATE.
	name string
	// Target label for SIGNAL.
	label string
	// Value carried by RETURN.
	value    string
	hasValue bool
	// Status carried by EXIT.
	code int
}

type flowKind uint

const (
	flowLeave flowKind = iota
	flowIterate
	flowReturn
	flowSignal
	flowExit
)

var flowNames = [...]string{
	"leave", "iterate", "return", "signal", "exit",
}

func (f *flowErr) Error() string {
	if int(f.kind) >= len(flowNames) {
		return fmt.Sprintf("!(BAD FLOW: %d)", f.kind)
	}
	return flowNames[f.kind]
}

// Show shows the flow "error".
func (f *flowErr) Show(string) string {
	return "\033[33;1m" + f.Error() + "\033[m"
}
