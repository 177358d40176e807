package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rexlang/rex/pkg/store"
)

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rex.db")

	st, err := store.NewStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.SetSharedVar("greeting", "hello"); err != nil {
		t.Fatalf("set shared var: %v", err)
	}
	if _, err := st.AddRun("hello.rex", time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("add run: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	st, err = store.NewStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()
	if v, err := st.SharedVar("greeting"); v != "hello" || err != nil {
		t.Errorf("SharedVar after reopening -> (%q, %v), want (%q, nil)", v, err, "hello")
	}
	run, err := st.Run(1)
	if err != nil || run.Script != "hello.rex" {
		t.Errorf("Run(1) after reopening -> (%v, %v), want script %q", run, err, "hello.rex")
	}
	if seq, err := st.NextRunSeq(); seq != 2 || err != nil {
		t.Errorf("NextRunSeq after reopening -> (%v, %v), want (2, nil)", seq, err)
	}
}
