package eval

import (
	"context"
	"fmt"

	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/parse"
)

// Target is implemented by address targets: named destinations that
// receive command strings and, when they declare support for it, method
// calls.
type Target interface {
	// Name returns the canonical target name.
	Name() string
	// Capabilities declares which invocation styles the target supports.
	Capabilities() Capabilities
	// Handle processes one dispatch, either completing it with a done
	// reply or registering a checkpoint and returning it as pending.
	Handle(ctx context.Context, call Call) (Reply, error)
}

// Capabilities are the invocation styles a target declares support for.
type Capabilities struct {
	CommandString bool
	MethodCall    bool
}

// Call is one dispatched invocation. For a command string, Command holds
// the text and Method is empty; for a method call, Method and Args are
// set.
type Call struct {
	Command string
	Method  string
	Args    []string
	// Authentication context installed by ADDRESS ... AUTH.
	Auth string
}

// Result is the final outcome of a dispatch.
type Result struct {
	Success bool
	Output  string
	Status  int
	// Err is set when the command could not run at all. It feeds the
	// ERRORTEXT variable and reports FAILURE rather than ERROR.
	Err string
}

// Reply is the immediate answer from a target, either a completed Result
// or a Pending checkpoint to be resolved out of band.
type Reply struct {
	Done    *Result
	Pending *Pending
}

// DoneReply makes a completed reply.
func DoneReply(r Result) Reply { return Reply{Done: &r} }

// PendingReply makes a suspended reply.
func PendingReply(p *Pending) Reply { return Reply{Pending: p} }

func (fm *Frame) execCommand(st *parse.CommandStmt) error {
	if st.Head != "" {
		op := fm.Evaler.lookupOp(st.Head)
		if op == nil {
			return fm.errorpf(st, CondSyntax,
				"operation %s does not exist", norm(st.Head))
		}
		args := make([]string, len(st.Args))
		for i, a := range st.Args {
			v, err := fm.evalExpr(a)
			if err != nil {
				return err
			}
			args[i] = v
		}
		val, has, err := op.Call(fm, args)
		if err != nil {
			return fm.errorp(st, condOf(err), err)
		}
		fm.setResult(val, has)
		return nil
	}
	text, err := fm.evalExpr(st.Cmd)
	if err != nil {
		return err
	}
	return fm.dispatchCommand(st, text)
}

// dispatchCommand routes a command string to the current address target
// and applies the RC, RESULT and ERRORTEXT contract. A failed dispatch
// raises ERROR or FAILURE only when the script has armed the trap.
func (fm *Frame) dispatchCommand(r diag.Ranger, text string) error {
	t, ok := fm.Evaler.targets.lookup(fm.address)
	if !ok {
		return fm.errorpf(r, CondSyntax,
			"address target %s does not exist", fm.address)
	}
	if !t.Capabilities().CommandString {
		return fm.errorpf(r, CondSyntax,
			"address target %s does not accept commands", fm.address)
	}
	res := fm.complete(t, Call{Command: text, Auth: fm.auth})
	fm.setDispatchVars(res)
	if res.Err != "" {
		return fm.raiseIfTrapped(r, CondFailure, "command failed: %s", res.Err)
	}
	if !res.Success {
		return fm.raiseIfTrapped(r, CondError,
			"command ended with status %d", res.Status)
	}
	return nil
}

// methodDispatch routes a function call to the current address target's
// method table. The boolean reports whether the target accepted the call;
// when it is false the caller continues down its resolution order.
func (fm *Frame) methodDispatch(r diag.Ranger, name string, args []string) (Result, bool, error) {
	t, ok := fm.Evaler.targets.lookup(fm.address)
	if !ok || !t.Capabilities().MethodCall {
		return Result{}, false, nil
	}
	res := fm.complete(t, Call{Method: norm(name), Args: args, Auth: fm.auth})
	fm.setDispatchVars(res)
	// A method call must produce a value, so its failure is raised
	// unconditionally, though still trappable.
	if res.Err != "" {
		return res, true, fm.errorpf(r, CondFailure,
			"method %s failed: %s", norm(name), res.Err)
	}
	if !res.Success {
		return res, true, fm.errorpf(r, CondError,
			"method %s ended with status %d", norm(name), res.Status)
	}
	return res, true, nil
}

// complete runs one dispatch to completion, waiting out a checkpoint
// reply if the target suspends.
func (fm *Frame) complete(t Target, call Call) Result {
	ctx := context.Background()
	if timeout := fm.Evaler.DispatchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	reply, err := t.Handle(ctx, call)
	if err != nil {
		return Result{Err: err.Error(), Status: 1}
	}
	switch {
	case reply.Done != nil:
		return *reply.Done
	case reply.Pending != nil:
		return fm.Evaler.Hub.wait(ctx, reply.Pending)
	default:
		return Result{
			Err:    "target " + t.Name() + " returned neither result nor checkpoint",
			Status: 1,
		}
	}
}

func (fm *Frame) setDispatchVars(res Result) {
	fm.pool.setSimple("RC", fmt.Sprint(res.Status))
	fm.pool.setSimple("RESULT", res.Output)
	if res.Err != "" {
		fm.pool.setSimple("ERRORTEXT", res.Err)
	} else {
		fm.pool.dropSimple("ERRORTEXT")
	}
}

// raiseIfTrapped raises the condition only when its trap is armed.
// Dispatch failures are reported through RC and ERRORTEXT either way.
func (fm *Frame) raiseIfTrapped(r diag.Ranger, cond string, format string, args ...any) error {
	if tr := fm.traps[cond]; tr != nil && tr.armed {
		return fm.errorpf(r, cond, format, args...)
	}
	return nil
}
