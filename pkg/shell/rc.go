package shell

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rexlang/rex/pkg/prog"
)

// RC is the run-control configuration, usually read from rex.yaml. The
// zero value is a working configuration.
type RC struct {
	// Initial numeric context, as if the script opened with NUMERIC DIGITS
	// and NUMERIC FUZZ.
	Digits int `yaml:"digits"`
	Fuzz   int `yaml:"fuzz"`

	// Extra directories searched by REQUIRE for bare module names, after
	// the ones named in REXX_PATH.
	LibPath []string `yaml:"libpath"`

	// Path of the database backing the store module. Empty leaves the
	// module unavailable.
	StoreDB string `yaml:"storedb"`

	// Data source of the sql module. The driver defaults to mysql. An
	// empty section leaves the module unavailable.
	SQL struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"sql"`

	// Daemon connection. When Sock is set, a checkpoint target named
	// Target (default "store") is registered; its dispatches go to the
	// target of the same name hosted by the daemon at Sock.
	Daemon struct {
		Sock   string `yaml:"sock"`
		Target string `yaml:"target"`
	} `yaml:"daemon"`
}

// rcPath resolves the rc file path: the -rc flag when given, otherwise
// rex/rex.yaml under the user configuration directory.
func rcPath(f *prog.Flags) (string, error) {
	if f.RC != "" {
		return f.RC, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine rc path: %v", err)
	}
	return filepath.Join(dir, "rex", "rex.yaml"), nil
}

// readRC reads the rc file. A missing file is not an error; any other
// failure returns the zero configuration along with the error.
func readRC(path string) (*RC, error) {
	rc := &RC{}
	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rc, nil
		}
		return rc, err
	}
	if err := yaml.Unmarshal(bytes, rc); err != nil {
		return &RC{}, fmt.Errorf("cannot parse %s: %v", path, err)
	}
	if rc.Digits < 0 || rc.Fuzz < 0 || (rc.Digits > 0 && rc.Fuzz >= rc.Digits) {
		err := fmt.Errorf("ignoring digits/fuzz in %s: fuzz must be from 0 to digits-1", path)
		rc.Digits, rc.Fuzz = 0, 0
		return rc, err
	}
	return rc, nil
}
