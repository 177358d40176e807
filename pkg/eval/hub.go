package eval

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CheckpointHub correlates suspended dispatches with the out-of-band
// responses that complete them. A target obtains a Pending from New
// inside Handle and returns it as its reply; the interpreter blocks on
// it, and the host completes it from any goroutine with Deliver or
// Cancel. Each checkpoint completes exactly once.
type CheckpointHub struct {
	mu      sync.Mutex
	seq     uint64
	pending map[string]*Pending
}

// Pending is an in-flight checkpoint: the correlation id handed to the
// host, and the channel its result arrives on.
type Pending struct {
	ID string
	ch chan Result
}

// NewCheckpointHub creates an empty hub.
func NewCheckpointHub() *CheckpointHub {
	return &CheckpointHub{pending: make(map[string]*Pending)}
}

// New allocates a checkpoint with a fresh correlation id.
func (h *CheckpointHub) New() *Pending {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	p := &Pending{ID: fmt.Sprintf("ckpt-%d", h.seq), ch: make(chan Result, 1)}
	h.pending[p.ID] = p
	return p
}

// Deliver completes the checkpoint with the given id. It reports whether
// the id named an outstanding checkpoint; delivering twice, or to an
// unknown id, returns false and has no effect.
func (h *CheckpointHub) Deliver(id string, r Result) bool {
	h.mu.Lock()
	p, ok := h.pending[id]
	if ok {
		delete(h.pending, id)
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	p.ch <- r
	return true
}

// Cancel completes an outstanding checkpoint with a failure carrying the
// given reason. Cancellation and delivery race safely; whichever runs
// first wins.
func (h *CheckpointHub) Cancel(id, reason string) bool {
	return h.Deliver(id, Result{Err: reason, Status: 1})
}

// Outstanding returns the ids of checkpoints not yet completed.
func (h *CheckpointHub) Outstanding() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.pending))
	for id := range h.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// wait blocks until the checkpoint completes. When ctx expires first the
// checkpoint is cancelled, which still funnels a result through the
// channel, so the read always returns.
func (h *CheckpointHub) wait(ctx context.Context, p *Pending) Result {
	select {
	case r := <-p.ch:
		return r
	case <-ctx.Done():
		h.Cancel(p.ID, "checkpoint "+p.ID+" timed out")
		return <-p.ch
	}
}
