//go:build !windows

package daemon

import "syscall"

// Makes files created by the daemon (the socket and the database) private
// to the user.
func setUmaskForDaemon() {
	syscall.Umask(0077)
}
