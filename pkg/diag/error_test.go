package diag

import (
	"strings"
	"testing"
)

func err(msg string, from, to int) *Error {
	return &Error{
		Type:    "parse error",
		Message: msg,
		Context: *NewContext("test.rex", "say 1\nsay %\n", Ranging{From: from, To: to}),
	}
}

func TestError(t *testing.T) {
	e := err("unexpected rune '%'", 10, 11)
	wantError := `parse error: test.rex, line 2: unexpected rune '%'`
	if got := e.Error(); got != wantError {
		t.Errorf("Error() = %q, want %q", got, wantError)
	}
	if got := e.Range(); got != (Ranging{10, 11}) {
		t.Errorf("Range() = %v, want {10 11}", got)
	}
	show := e.Show("")
	for _, want := range []string{"Parse error", "unexpected rune", "line 2"} {
		if !strings.Contains(show, want) {
			t.Errorf("Show() = %q, missing %q", show, want)
		}
	}
}

func TestPackAndUnpackErrors(t *testing.T) {
	if got := PackErrors(nil); got != nil {
		t.Errorf("PackErrors(nil) = %v, want nil", got)
	}

	one := err("oops", 0, 3)
	if got := PackErrors([]*Error{one}); got != one {
		t.Errorf("PackErrors of one error did not return it unchanged")
	}
	if got := UnpackErrors(one); len(got) != 1 || got[0] != one {
		t.Errorf("UnpackErrors of a single *Error = %v", got)
	}

	two := []*Error{one, err("again", 6, 9)}
	packed := PackErrors(two)
	if !strings.Contains(packed.Error(), "multiple (2) parse errors") {
		t.Errorf("packed error message = %q", packed.Error())
	}
	unpacked := UnpackErrors(packed)
	if len(unpacked) != 2 || unpacked[0] != two[0] || unpacked[1] != two[1] {
		t.Errorf("UnpackErrors round trip failed: %v", unpacked)
	}

	if got := UnpackErrors(errString("other")); got != nil {
		t.Errorf("UnpackErrors of a foreign error = %v, want nil", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestContextLines(t *testing.T) {
	src := "a\nbb\nccc\n"
	c := NewContext("f", src, Ranging{From: 5, To: 8})
	if c.StartLine() != 3 {
		t.Errorf("StartLine = %d, want 3", c.StartLine())
	}
	if c.StartColumn() != 1 {
		t.Errorf("StartColumn = %d, want 1", c.StartColumn())
	}
	if got := c.ShowCompact(""); !strings.Contains(got, "line 3:") {
		t.Errorf("ShowCompact = %q, missing line 3", got)
	}
}
