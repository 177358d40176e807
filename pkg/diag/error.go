package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Error is an error with a source context attached. The Type field is a short
// description of the error's class, like "parse error" or "syntax condition".
type Error struct {
	Type    string
	Message string
	Context Context
	// Partial indicates that the error is caused by the source being
	// incomplete, rather than being wrong. It is used by interactive
	// frontends to decide whether to read more input.
	Partial bool
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s, line %d: %s",
		e.Type, e.Context.Name, e.Context.StartLine(), e.Message)
}

// Range returns the range of the error's context.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error header and the source context.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: \033[31;1m%s\033[m\n", title(e.Type), e.Message)
	return header + indent + "  " + e.Context.ShowCompact(indent+"  ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PackErrors packs multiple *Error values into a single error:
//
//   - If called with no errors, it returns nil.
//   - If called with one error, it returns that error itself.
//   - If called with more than one error, it returns an error whose message
//     lists all the individual messages, and which unpacks with UnpackErrors.
func PackErrors(errs []*Error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return multiError(errs)
	}
}

// UnpackErrors returns the constituent *Error values inside err if err was
// built by PackErrors, a slice containing err itself if err is an *Error, and
// nil otherwise.
func UnpackErrors(err error) []*Error {
	var single *Error
	if errors.As(err, &single) {
		return []*Error{single}
	}
	var multi multiError
	if errors.As(err, &multi) {
		return multi
	}
	return nil
}

type multiError []*Error

func (me multiError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "multiple (%d) %ss: ", len(me), me[0].Type)
	for i, e := range me {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%d-%d in %s: %s",
			e.Context.From, e.Context.To, e.Context.Name, e.Message)
	}
	return sb.String()
}

func (me multiError) Show(indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Multiple %ss:", me[0].Type)
	for _, e := range me {
		sb.WriteString("\n" + indent + "  ")
		fmt.Fprintf(&sb, "\033[31;1m%s\033[m\n", e.Message)
		sb.WriteString(indent + "    " + e.Context.ShowCompact(indent+"    "))
	}
	return sb.String()
}
