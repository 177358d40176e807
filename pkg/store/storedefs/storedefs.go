// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// do not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"
)

// ErrNoVar is returned by Store.SharedVar when there is no such variable.
var ErrNoVar = errors.New("no such variable")

// ErrNoSuchRun is returned by Store.Run when the sequence number names no
// run log entry.
var ErrNoSuchRun = errors.New("no such run")

// Store is an interface satisfied by the storage service.
type Store interface {
	// NextRunSeq returns the sequence number the next run will get.
	NextRunSeq() (int, error)
	// AddRun appends an entry to the run log.
	AddRun(script string, at time.Time) (int, error)
	// Run returns the run log entry with the given sequence number.
	Run(seq int) (Run, error)
	// RunsWithSeq returns all run log entries with sequence numbers in
	// [from, upto).
	RunsWithSeq(from, upto int) ([]Run, error)

	SharedVar(name string) (string, error)
	SetSharedVar(name, value string) error
	DelSharedVar(name string) error
	// SharedVarNames returns the sorted names of all shared variables.
	SharedVarNames() ([]string, error)

	Close() error
}

// Run is an entry in the run log.
type Run struct {
	Seq    int
	Script string
	At     time.Time
}
