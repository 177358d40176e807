// Package testutil contains common test utilities.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// InTempDir creates a new temporary directory, changes into it, and arranges
// for the original working directory to be restored during cleanup. It
// returns the path of the temporary directory.
func InTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir to temp dir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	return dir
}

// Setenv sets an environment variable for the duration of the test.
func Setenv(t *testing.T, name, value string) {
	t.Helper()
	old, existed := os.LookupEnv(name)
	os.Setenv(name, value)
	t.Cleanup(func() {
		if existed {
			os.Setenv(name, old)
		} else {
			os.Unsetenv(name)
		}
	})
}

// Dir describes the layout of a directory. The keys of the map represent
// filenames. Each value is either a string (the content of a regular file,
// created with permission 0644) or a nested Dir (a subdirectory).
type Dir map[string]any

// ApplyDir creates the given filesystem layout in the current directory.
func ApplyDir(t *testing.T, dir Dir) {
	t.Helper()
	applyDir(t, dir, ".")
}

func applyDir(t *testing.T, dir Dir, root string) {
	t.Helper()
	for name, file := range dir {
		path := filepath.Join(root, name)
		switch file := file.(type) {
		case string:
			if err := os.WriteFile(path, []byte(file), 0644); err != nil {
				t.Fatalf("write %s: %v", path, err)
			}
		case Dir:
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatalf("mkdir %s: %v", path, err)
			}
			applyDir(t, file, path)
		default:
			t.Fatalf("file must be string or Dir, got %T", file)
		}
	}
}

// Dedent removes an indentation prefix from every line of a multi-line
// string. The prefix is taken from the first indented line, and the leading
// newline is dropped, so that test sources can be written as indented raw
// string literals.
func Dedent(text string) string {
	text = strings.TrimPrefix(text, "\n")
	lines := strings.Split(text, "\n")
	prefix := ""
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			prefix = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			break
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
