package daemon

import (
	"context"
	"strings"

	"github.com/rexlang/rex/pkg/daemon/daemondefs"
	"github.com/rexlang/rex/pkg/eval"
)

// Dial creates a client to the daemon listening on sockPath, along with a
// dispatch target forwarding to the daemon's hosted target of the given
// name. The connection is established lazily on the first call.
func Dial(sockPath, name string, hub *eval.CheckpointHub) (daemondefs.Client, eval.Target) {
	c := NewClient(sockPath)
	return c, Target(c, name, hub)
}

// Target returns a dispatch target that forwards calls to the target of the
// same name hosted by the daemon. Every dispatch suspends as a checkpoint on
// hub; a goroutine issues the RPC and resumes the checkpoint when the
// response arrives.
func Target(c daemondefs.Client, name string, hub *eval.CheckpointHub) eval.Target {
	return &target{strings.ToUpper(name), c, hub}
}

type target struct {
	name string
	c    daemondefs.Client
	hub  *eval.CheckpointHub
}

func (t *target) Name() string { return t.name }

// Capabilities declares both invocation styles; the hosted target applies
// its own capabilities on the daemon side.
func (t *target) Capabilities() eval.Capabilities {
	return eval.Capabilities{CommandString: true, MethodCall: true}
}

func (t *target) Handle(_ context.Context, call eval.Call) (eval.Reply, error) {
	p := t.hub.New()
	go func() {
		res, err := t.c.Dispatch(t.name, call)
		if err != nil {
			t.hub.Cancel(p.ID, err.Error())
			return
		}
		t.hub.Deliver(p.ID, res)
	}()
	return eval.PendingReply(p), nil
}
