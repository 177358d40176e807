// Package eval implements the execution engine of the interpreter: the
// value and scope model, statement and expression evaluation, condition
// trapping, ADDRESS dispatch, and the module loader behind REQUIRE.
package eval

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rexlang/rex/pkg/diag"
	"github.com/rexlang/rex/pkg/logutil"
	"github.com/rexlang/rex/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler provides the interpreter's global state. Each Evaler is
// independent: its registries of functions, operations and address targets,
// its module cache and its checkpoint hub are not shared with other
// instances unless the host wires them together.
type Evaler struct {
	mu sync.Mutex

	// Functions and operations provided by loaded modules, keyed by
	// upper-case name. providers maps each name to the canonical id of the
	// module that provided it, for conflict detection.
	functions  map[string]Callable
	operations map[string]Callable
	providers  map[string]string

	modules    map[string]*Module // canonical id -> module
	specifiers map[string]string  // load specifier -> canonical id
	loading    map[string]bool    // specifiers being loaded, for cycle detection

	targets *targetRegistry

	// Registry of host-provided modules loadable as "registry:name" or by
	// bare name.
	registry map[string]ModuleDef

	// Directories searched by REQUIRE for bare names, usually from
	// REXX_PATH.
	libPath []string

	// Hub correlates checkpoint responses with suspended dispatches.
	Hub *CheckpointHub

	// DispatchTimeout bounds a single checkpoint dispatch. Zero means no
	// timeout.
	DispatchTimeout time.Duration
}

// NewEvaler creates a new Evaler.
func NewEvaler() *Evaler {
	return &Evaler{
		functions:  make(map[string]Callable),
		operations: make(map[string]Callable),
		providers:  make(map[string]string),
		modules:    make(map[string]*Module),
		specifiers: make(map[string]string),
		targets:    newTargetRegistry(),
		registry:   make(map[string]ModuleDef),
		Hub:        NewCheckpointHub(),
	}
}

// AddModule makes def loadable with REQUIRE under the given registry name.
func (ev *Evaler) AddModule(name string, def ModuleDef) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.registry[name] = def
}

// SetLibPath sets the directories REQUIRE searches for bare module names.
func (ev *Evaler) SetLibPath(dirs []string) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.libPath = append([]string(nil), dirs...)
}

// RegisterTarget adds an address target to the registry, failing when the
// name is already taken by a different target.
func (ev *Evaler) RegisterTarget(t Target) error {
	return ev.targets.add(t)
}

// EvalCfg configures a call to Eval.
type EvalCfg struct {
	// Stdout receives SAY output. Defaults to os.Stdout.
	Stdout io.Writer
	// Args are the script arguments, readable with the ARG function and
	// PARSE ARG.
	Args []string
	// Interrupts, when non-nil, raises the HALT condition at the next
	// statement boundary after a value arrives.
	Interrupts <-chan struct{}
	// Digits and Fuzz override the initial numeric context of the top-level
	// frame when valid, as if the script opened with NUMERIC DIGITS and
	// NUMERIC FUZZ.
	Digits int
	Fuzz   int
}

// Eval runs a parsed program. The returned error is nil on normal
// completion, an *Exception for an uncaught condition, or an ExitStatus
// when the script ended with EXIT.
func (ev *Evaler) Eval(tree parse.Tree, cfg EvalCfg) error {
	fm := newTopFrame(ev, cfg)
	fm.src = tree.Source
	fm.chunk = tree.Root
	return topLevel(fm.runChunk(tree.Root))
}

// NewSession prepares an interactive session: a top-level frame whose
// variable pool, numeric context, active address and condition traps
// survive across inputs. Labels are still scoped to each input.
func (ev *Evaler) NewSession(cfg EvalCfg) *Session {
	return &Session{newTopFrame(ev, cfg)}
}

// Session evaluates successive pieces of input against shared top-level
// state, for a read-eval loop. See [Evaler.NewSession].
type Session struct {
	fm *Frame
}

// Eval runs one piece of input, with the same error contract as
// [Evaler.Eval].
func (s *Session) Eval(tree parse.Tree) error {
	s.fm.src = tree.Source
	s.fm.chunk = tree.Root
	return topLevel(s.fm.runChunk(tree.Root))
}

func newTopFrame(ev *Evaler, cfg EvalCfg) *Frame {
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}
	fm := &Frame{
		Evaler:     ev,
		pool:       newPool(),
		out:        out,
		args:       cfg.Args,
		digits:     defaultDigits,
		fuzz:       defaultFuzz,
		address:    DefaultTarget,
		addressAlt: DefaultTarget,
		interrupts: cfg.Interrupts,
		traps:      make(map[string]*trap),
	}
	if cfg.Digits >= 1 {
		fm.digits = cfg.Digits
	}
	if cfg.Fuzz > 0 && cfg.Fuzz < fm.digits {
		fm.fuzz = cfg.Fuzz
	}
	return fm
}

// topLevel maps the error out of a top-level chunk run to Eval's contract.
func topLevel(err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case *flowErr:
		switch e.kind {
		case flowExit:
			return ExitStatus{e.code}
		case flowReturn:
			return nil
		default:
			// LEAVE or ITERATE outside a loop, or SIGNAL to a label that
			// does not exist, surfaces as an exception in runChunk; other
			// leaks are bugs.
			logger.Printf("flow error leaked to top level: %v", e)
			return nil
		}
	default:
		return err
	}
}

// ExitStatus is returned by Eval when the script ended with EXIT. The
// status is the value of the EXIT expression, or 0 when there was none.
type ExitStatus struct{ Status int }

func (e ExitStatus) Error() string {
	return "exit status " + strconv.Itoa(e.Status)
}

// EvalSource is a shortcut that parses and runs source code.
func (ev *Evaler) EvalSource(src parse.Source, cfg EvalCfg) error {
	tree, err := parse.Parse(src)
	if err != nil {
		return err
	}
	return ev.Eval(tree, cfg)
}

// rangedError attaches a source context to an error for reporting.
func rangedError(src parse.Source, r diag.Ranger, typ string, err error) *diag.Error {
	return &diag.Error{
		Type:    typ,
		Message: err.Error(),
		Context: *diag.NewContext(src.Name, src.Code, r.Range()),
	}
}
