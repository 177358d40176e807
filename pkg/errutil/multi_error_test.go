package errutil

import (
	"errors"
	"testing"
)

func TestMulti(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	if err := Multi(); err != nil {
		t.Errorf("Multi() = %v, want nil", err)
	}
	if err := Multi(nil, nil); err != nil {
		t.Errorf("Multi(nil, nil) = %v, want nil", err)
	}
	if err := Multi(nil, err1); err != err1 {
		t.Errorf("Multi(nil, err1) = %v, want err1", err)
	}

	got := Multi(err1, nil, err2)
	want := "multiple errors: error 1; error 2"
	if got == nil || got.Error() != want {
		t.Errorf("Multi(err1, nil, err2) = %v, want %q", got, want)
	}

	// Nested Multi errors are flattened.
	got = Multi(Multi(err1, err2), err3)
	want = "multiple errors: error 1; error 2; error 3"
	if got == nil || got.Error() != want {
		t.Errorf("Multi(Multi(err1, err2), err3) = %v, want %q", got, want)
	}
}
