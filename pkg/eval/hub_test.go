package eval

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCheckpointHub_CorrelatesOutOfOrder(t *testing.T) {
	h := NewCheckpointHub()
	p1 := h.New()
	p2 := h.New()
	if p1.ID == p2.ID {
		t.Fatalf("ids not unique: %s", p1.ID)
	}
	// Complete the later checkpoint first; each result still reaches the
	// checkpoint it was addressed to.
	if !h.Deliver(p2.ID, Result{Success: true, Output: "two"}) {
		t.Errorf("Deliver(%s) = false, want true", p2.ID)
	}
	if !h.Deliver(p1.ID, Result{Success: true, Output: "one"}) {
		t.Errorf("Deliver(%s) = false, want true", p1.ID)
	}
	if got := h.wait(context.Background(), p1).Output; got != "one" {
		t.Errorf("checkpoint %s got %q, want %q", p1.ID, got, "one")
	}
	if got := h.wait(context.Background(), p2).Output; got != "two" {
		t.Errorf("checkpoint %s got %q, want %q", p2.ID, got, "two")
	}
}

func TestCheckpointHub_DeliversOnce(t *testing.T) {
	h := NewCheckpointHub()
	p := h.New()
	if !h.Deliver(p.ID, Result{Output: "first"}) {
		t.Errorf("first Deliver = false, want true")
	}
	if h.Deliver(p.ID, Result{Output: "second"}) {
		t.Errorf("second Deliver = true, want false")
	}
	if got := h.wait(context.Background(), p).Output; got != "first" {
		t.Errorf("got %q, want %q", got, "first")
	}
}

func TestCheckpointHub_UnknownID(t *testing.T) {
	h := NewCheckpointHub()
	if h.Deliver("ckpt-99", Result{}) {
		t.Errorf("Deliver to unknown id = true, want false")
	}
}

func TestCheckpointHub_Outstanding(t *testing.T) {
	h := NewCheckpointHub()
	p1 := h.New()
	p2 := h.New()
	p3 := h.New()
	h.Deliver(p2.ID, Result{})
	want := []string{p1.ID, p3.ID}
	if diff := cmp.Diff(want, h.Outstanding()); diff != "" {
		t.Errorf("Outstanding() (-want +got):\n%s", diff)
	}
}

func TestCheckpointHub_Cancel(t *testing.T) {
	h := NewCheckpointHub()
	p := h.New()
	if !h.Cancel(p.ID, "host shutting down") {
		t.Errorf("Cancel = false, want true")
	}
	res := h.wait(context.Background(), p)
	if res.Success {
		t.Errorf("cancelled checkpoint reported success")
	}
	if res.Err != "host shutting down" {
		t.Errorf("got Err %q, want %q", res.Err, "host shutting down")
	}
}

func TestCheckpointHub_WaitTimeout(t *testing.T) {
	h := NewCheckpointHub()
	p := h.New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	res := h.wait(ctx, p)
	if want := "checkpoint " + p.ID + " timed out"; res.Err != want {
		t.Errorf("got Err %q, want %q", res.Err, want)
	}
	if n := len(h.Outstanding()); n != 0 {
		t.Errorf("%d checkpoints still outstanding after timeout", n)
	}
}

func TestCheckpointHub_DeliverWhileWaiting(t *testing.T) {
	h := NewCheckpointHub()
	p := h.New()
	go h.Deliver(p.ID, Result{Success: true, Output: "bg"})
	if got := h.wait(context.Background(), p).Output; got != "bg" {
		t.Errorf("got %q, want %q", got, "bg")
	}
}
