// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rexlang/rex/pkg/store"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

// MustTempStore opens a store backed by a database file in a temporary
// directory, and arranges for it to be closed when the test finishes. It
// aborts the test if the store cannot be opened.
func MustTempStore(t *testing.T) storedefs.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "rex.db"))
	if err != nil {
		t.Fatalf("open temporary store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}

// TestSharedVar tests the shared variable service of a store.
func TestSharedVar(t *testing.T, st storedefs.Store) {
	_, err := st.SharedVar("a")
	if !matchErr(err, storedefs.ErrNoVar) {
		t.Errorf("SharedVar(a) before setting -> error %v, want %v", err, storedefs.ErrNoVar)
	}

	if err := st.SetSharedVar("a", "lorem"); err != nil {
		t.Errorf("SetSharedVar(a) -> error %v, want nil", err)
	}
	if v, err := st.SharedVar("a"); v != "lorem" || err != nil {
		t.Errorf("SharedVar(a) -> (%q, %v), want (%q, nil)", v, err, "lorem")
	}

	if err := st.SetSharedVar("a", "ipsum"); err != nil {
		t.Errorf("SetSharedVar(a) again -> error %v, want nil", err)
	}
	if v, err := st.SharedVar("a"); v != "ipsum" || err != nil {
		t.Errorf("SharedVar(a) after overwriting -> (%q, %v), want (%q, nil)", v, err, "ipsum")
	}

	if err := st.SetSharedVar("b", "dolor"); err != nil {
		t.Errorf("SetSharedVar(b) -> error %v, want nil", err)
	}
	wantNames := []string{"a", "b"}
	if names, err := st.SharedVarNames(); !cmp.Equal(names, wantNames) || err != nil {
		t.Errorf("SharedVarNames -> (%v, %v), want (%v, nil)", names, err, wantNames)
	}

	if err := st.DelSharedVar("a"); err != nil {
		t.Errorf("DelSharedVar(a) -> error %v, want nil", err)
	}
	_, err = st.SharedVar("a")
	if !matchErr(err, storedefs.ErrNoVar) {
		t.Errorf("SharedVar(a) after deleting -> error %v, want %v", err, storedefs.ErrNoVar)
	}

	// Deleting a variable that was never set is not an error.
	if err := st.DelSharedVar("nonexistent"); err != nil {
		t.Errorf("DelSharedVar(nonexistent) -> error %v, want nil", err)
	}
}

// TestRunLog tests the run log service of a store.
func TestRunLog(t *testing.T, st storedefs.Store) {
	if seq, err := st.NextRunSeq(); seq != 1 || err != nil {
		t.Errorf("NextRunSeq of empty log -> (%v, %v), want (1, nil)", seq, err)
	}
	_, err := st.Run(1)
	if !matchErr(err, storedefs.ErrNoSuchRun) {
		t.Errorf("Run(1) of empty log -> error %v, want %v", err, storedefs.ErrNoSuchRun)
	}

	epoch := time.Unix(1700000000, 0)
	scripts := []string{"deploy.rex", "backup.rex", "report.rex"}
	for i, script := range scripts {
		seq, err := st.AddRun(script, epoch.Add(time.Duration(i)*time.Minute))
		if seq != i+1 || err != nil {
			t.Errorf("AddRun(%q) -> (%v, %v), want (%v, nil)", script, seq, err, i+1)
		}
	}
	if seq, err := st.NextRunSeq(); seq != 4 || err != nil {
		t.Errorf("NextRunSeq -> (%v, %v), want (4, nil)", seq, err)
	}

	wantRun := storedefs.Run{Seq: 2, Script: "backup.rex", At: epoch.Add(time.Minute)}
	if run, err := st.Run(2); !cmp.Equal(run, wantRun) || err != nil {
		t.Errorf("Run(2) -> (%v, %v), want (%v, nil)", run, err, wantRun)
	}
	_, err = st.Run(4)
	if !matchErr(err, storedefs.ErrNoSuchRun) {
		t.Errorf("Run(4) -> error %v, want %v", err, storedefs.ErrNoSuchRun)
	}

	wantRuns := []storedefs.Run{
		{Seq: 2, Script: "backup.rex", At: epoch.Add(time.Minute)},
		{Seq: 3, Script: "report.rex", At: epoch.Add(2 * time.Minute)},
	}
	runs, err := st.RunsWithSeq(2, 4)
	if diff := cmp.Diff(wantRuns, runs); diff != "" || err != nil {
		t.Errorf("RunsWithSeq(2, 4) -> error %v, diff (-want +got):\n%s", err, diff)
	}
	if runs, err := st.RunsWithSeq(10, 20); len(runs) != 0 || err != nil {
		t.Errorf("RunsWithSeq(10, 20) -> (%v, %v), want (empty, nil)", runs, err)
	}

	// A script name containing spaces round-trips intact.
	seq, err := st.AddRun("nightly report run", epoch)
	if err != nil {
		t.Fatalf("AddRun -> error %v, want nil", err)
	}
	if run, err := st.Run(seq); run.Script != "nightly report run" || err != nil {
		t.Errorf("Run(%v) -> (%v, %v), want script %q", seq, run, err, "nightly report run")
	}
}
