// Package daemondefs contains definitions used for the daemon.
//
// It is a separate package so that packages that only depend on the daemon
// API do not need to depend on the concrete implementation.
package daemondefs

import (
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

// Client represents a daemon client. Closing it only closes the connection;
// the daemon and its store stay up for other clients.
type Client interface {
	storedefs.Store

	// Dispatch completes one call to a target hosted by the daemon.
	Dispatch(target string, call eval.Call) (eval.Result, error)

	ResetConn() error

	SockPath() string
	Version() (int, error)
}
