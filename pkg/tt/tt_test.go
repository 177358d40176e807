package tt

import (
	"fmt"
	"strings"
	"testing"
)

// recorder implements T and records errors.
type recorder struct {
	errors []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func add(a, b int) int { return a + b }

func divmod(a, b int) (int, int) { return a / b, a % b }

func TestPassingCases(t *testing.T) {
	r := &recorder{}
	Test(r, Fn("add", add), Table{
		Args(1, 2).Rets(3),
		Args(0, 0).Rets(0),
	})
	Test(r, Fn("divmod", divmod), Table{
		Args(7, 3).Rets(2, 1),
		Args(7, 3).Rets(Any, 1),
	})
	if len(r.errors) != 0 {
		t.Errorf("got errors %v, want none", r.errors)
	}
}

func TestFailingCase(t *testing.T) {
	r := &recorder{}
	Test(r, Fn("add", add), Table{
		Args(1, 2).Rets(4),
	})
	if len(r.errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(r.errors))
	}
	if !strings.Contains(r.errors[0], "add(1, 2) -> 3, want 4") {
		t.Errorf("error message = %q", r.errors[0])
	}
}
