// Package sysaddr provides the system module: an ADDRESS SYSTEM target
// that runs command strings through the operating system shell.
package sysaddr

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rexlang/rex/pkg/eval"
)

// Def is the system module, loadable with REQUIRE "registry:system".
var Def = eval.ModuleDef{
	ID:     "rex/system",
	Target: target{},
}

type target struct{}

func (target) Name() string { return "SYSTEM" }

func (target) Capabilities() eval.Capabilities {
	return eval.Capabilities{CommandString: true}
}

// Handle runs the command string under sh -c (cmd /c on Windows). RC is
// the command's exit status and RESULT its standard output with trailing
// newlines removed; standard error passes through to the host process.
func (target) Handle(ctx context.Context, call eval.Call) (eval.Reply, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/c", call.Command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", call.Command)
	}
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	res := eval.Result{Output: strings.TrimRight(string(out), "\n")}
	switch err := err.(type) {
	case nil:
		res.Success = true
	case *exec.ExitError:
		res.Status = err.ExitCode()
	default:
		res.Err = err.Error()
		res.Status = 1
	}
	return eval.DoneReply(res), nil
}
