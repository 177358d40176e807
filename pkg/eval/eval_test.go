package eval_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/must"
	"github.com/rexlang/rex/pkg/parse"
)

func evalWithInterrupts(t *testing.T, code string, intr <-chan struct{}, setup func(*eval.Evaler)) (string, error) {
	t.Helper()
	tree := must.OK1(parse.Parse(parse.Source{Name: "[test]", Code: code}))
	ev := eval.NewEvaler()
	if setup != nil {
		setup(ev)
	}
	var out bytes.Buffer
	err := ev.Eval(tree, eval.EvalCfg{Stdout: &out, Interrupts: intr})
	return out.String(), err
}

func TestInterrupt(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	out, err := evalWithInterrupts(t, `say 'hi'`, ch, nil)
	if out != "" {
		t.Errorf("got output %q, want none", out)
	}
	exc, ok := err.(eval.Exception)
	if !ok {
		t.Fatalf("got error %v, want an Exception", err)
	}
	if exc.Condition() != eval.CondHalt {
		t.Errorf("got condition %s, want %s", exc.Condition(), eval.CondHalt)
	}
}

func TestInterrupt_TrappedByHalt(t *testing.T) {
	ch := make(chan struct{}, 1)
	out, err := evalWithInterrupts(t,
		"signal on halt name stopped\n"+
			"address intr\n"+
			"'poke'\n"+
			"say 'not reached'\n"+
			"stopped:\n"+
			"say 'stopped'",
		ch,
		func(ev *eval.Evaler) {
			register(ev, &testTarget{
				name: "INTR",
				caps: eval.Capabilities{CommandString: true},
				handle: func(_ context.Context, _ eval.Call) (eval.Reply, error) {
					ch <- struct{}{}
					return eval.DoneReply(eval.Result{Success: true}), nil
				},
			})
		})
	if err != nil {
		t.Errorf("got error %v, want nil", err)
	}
	if out != "stopped\n" {
		t.Errorf("got output %q, want %q", out, "stopped\n")
	}
}

func TestExitStatus(t *testing.T) {
	if got, want := (eval.ExitStatus{Status: 3}).Error(), "exit status 3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSession(t *testing.T) {
	var out bytes.Buffer
	s := eval.NewEvaler().NewSession(eval.EvalCfg{Stdout: &out})
	eval1 := func(code string) error {
		return s.Eval(must.OK1(parse.Parse(parse.Source{Name: "[test]", Code: code})))
	}

	// Variables and the numeric context persist between inputs.
	for _, code := range []string{"x = 42", "numeric digits 3", "say x 2/3"} {
		if err := eval1(code); err != nil {
			t.Fatalf("eval %q: %v", code, err)
		}
	}
	if got, want := out.String(), "42 0.667\n"; got != want {
		t.Errorf("got output %q, want %q", got, want)
	}

	err := eval1("exit 5")
	if es, ok := err.(eval.ExitStatus); !ok || es.Status != 5 {
		t.Errorf("got error %v, want exit status 5", err)
	}
}

func TestEvalSource(t *testing.T) {
	var out bytes.Buffer
	err := eval.NewEvaler().EvalSource(
		parse.Source{Name: "[test]", Code: "say 'hi'"},
		eval.EvalCfg{Stdout: &out})
	if err != nil {
		t.Errorf("got error %v, want nil", err)
	}
	if out.String() != "hi\n" {
		t.Errorf("got output %q, want %q", out.String(), "hi\n")
	}

	err = eval.NewEvaler().EvalSource(
		parse.Source{Name: "[test]", Code: "do i = 1"}, eval.EvalCfg{})
	if err == nil {
		t.Errorf("got nil error for unterminated DO, want a parse error")
	}
}
