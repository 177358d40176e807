package shell

import (
	"path/filepath"
	"testing"

	"github.com/rexlang/rex/pkg/env"
	"github.com/rexlang/rex/pkg/testutil"
)

// setupCleanHomePaths changes into a temporary directory and points the
// home and configuration directories into it, so that tests never touch
// the developer's own rex.yaml or history.
func setupCleanHomePaths(t *testing.T) string {
	dir := testutil.InTempDir(t)
	testutil.Setenv(t, env.HOME, dir)
	testutil.Setenv(t, env.XDG_CONFIG_HOME, filepath.Join(dir, "config"))
	return dir
}
