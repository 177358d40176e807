package shell

import (
	"io"
	"testing"

	"github.com/rexlang/rex/pkg/must"
)

func TestMinEditor(t *testing.T) {
	inR, inW := testPipe(t)
	outR, outW := testPipe(t)
	ed := newMinEditor(inR, outW)
	defer ed.Close()

	must.OK1(inW.WriteString("one\ntwo"))
	inW.Close()

	line, err := ed.ReadLine("> ")
	if line != "one" || err != nil {
		t.Errorf("first ReadLine -> %q, %v, want %q, nil", line, err, "one")
	}
	// The last line is used even though it has no line ending.
	line, err = ed.ReadLine("> ")
	if line != "two" || err != nil {
		t.Errorf("second ReadLine -> %q, %v, want %q, nil", line, err, "two")
	}
	if _, err := ed.ReadLine("> "); err != io.EOF {
		t.Errorf("third ReadLine -> error %v, want io.EOF", err)
	}

	outW.Close()
	prompts := string(must.OK1(io.ReadAll(outR)))
	if prompts != "> > > " {
		t.Errorf("prompts written: %q, want %q", prompts, "> > > ")
	}
}
