// Package env keeps names of environment variables with special significance to
// Rex.
package env

// Environment variables with special significance to Rex.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	HOME                = "HOME"
	REX_TEST_TIME_SCALE = "REX_TEST_TIME_SCALE"
	REXX_PATH           = "REXX_PATH"
	XDG_CONFIG_HOME     = "XDG_CONFIG_HOME"
)
