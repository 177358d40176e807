package eval

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rexlang/rex/pkg/parse"
)

// Callable is implemented by functions callable from scripts: built-ins
// and Go module functions via GoFn, and routines of loaded source
// modules.
type Callable interface {
	Name() string
	// Call returns the value of the call, whether there is one, and any
	// error.
	Call(fm *Frame, args []string) (string, bool, error)
}

// FuncSpec describes one function or operation provided by a module: its
// name, parameter names for documentation, a one-line description, and a
// Go implementation following the NewGoFn parameter rules.
type FuncSpec struct {
	Name   string
	Params []string
	Descr  string
	Impl   any
}

// ModuleDef is a module implemented in Go, loadable from the host
// registry with REQUIRE.
type ModuleDef struct {
	// ID is the canonical module identity. Loading the same identity
	// again, under any specifier, is a no-op.
	ID         string
	Functions  []FuncSpec
	Operations []FuncSpec
	// Target, when non-nil, is registered as an address target at load
	// time.
	Target Target
}

// Module records one loaded module.
type Module struct {
	ID string
	// From is the specifier or file path the module was first loaded
	// from.
	From       string
	Functions  []FuncSpec
	Operations []FuncSpec
	TargetName string
}

// require implements the REQUIRE statement: resolve the specifier, load
// and register the module, and memoize so that repeated loads are no-ops.
func (ev *Evaler) require(fm *Frame, spec string) error {
	if spec == "" {
		return errors.New("empty module specifier")
	}
	ev.mu.Lock()
	if _, ok := ev.specifiers[spec]; ok {
		ev.mu.Unlock()
		return nil
	}
	if ev.loading == nil {
		ev.loading = make(map[string]bool)
	}
	if ev.loading[spec] {
		ev.mu.Unlock()
		return fmt.Errorf("circular load of module %s", spec)
	}
	ev.loading[spec] = true
	ev.mu.Unlock()
	defer func() {
		ev.mu.Lock()
		delete(ev.loading, spec)
		ev.mu.Unlock()
	}()

	if name, ok := strings.CutPrefix(spec, "registry:"); ok {
		return ev.loadRegistry(spec, name)
	}
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/") {
		return ev.loadFile(fm, spec, fm.resolvePath(spec))
	}
	ev.mu.Lock()
	_, inRegistry := ev.registry[spec]
	libPath := ev.libPath
	ev.mu.Unlock()
	if inRegistry {
		return ev.loadRegistry(spec, spec)
	}
	for _, dir := range libPath {
		path := filepath.Join(dir, spec+".rex")
		if _, err := os.Stat(path); err == nil {
			return ev.loadFile(fm, spec, path)
		}
	}
	return fmt.Errorf("module %s not found", spec)
}

// resolvePath resolves a relative module path against the directory of
// the requiring source file when it came from a file, and against the
// working directory otherwise.
func (fm *Frame) resolvePath(spec string) string {
	if filepath.IsAbs(spec) || !fm.src.IsFile {
		return filepath.Clean(spec)
	}
	return filepath.Join(filepath.Dir(fm.src.Name), spec)
}

func (ev *Evaler) loadRegistry(spec, name string) error {
	ev.mu.Lock()
	def, ok := ev.registry[name]
	if !ok {
		ev.mu.Unlock()
		return fmt.Errorf("module %s is not in the registry", name)
	}
	if _, loaded := ev.modules[def.ID]; loaded {
		ev.specifiers[spec] = def.ID
		ev.mu.Unlock()
		return nil
	}
	ev.mu.Unlock()

	var fns, ops []Callable
	for _, s := range def.Functions {
		fns = append(fns, NewGoFn(s.Name, s.Impl))
	}
	for _, s := range def.Operations {
		ops = append(ops, NewGoFn(s.Name, s.Impl))
	}
	if err := ev.addProvided(def.ID, fns, ops); err != nil {
		return err
	}
	mod := &Module{
		ID: def.ID, From: spec,
		Functions: def.Functions, Operations: def.Operations,
	}
	if def.Target != nil {
		if err := ev.targets.add(def.Target); err != nil {
			return err
		}
		mod.TargetName = norm(def.Target.Name())
	}
	ev.mu.Lock()
	ev.modules[def.ID] = mod
	ev.specifiers[spec] = def.ID
	ev.mu.Unlock()
	logger.Printf("loaded module %s from %s", def.ID, spec)
	return nil
}

// loadFile loads a source module: run its top level, call its detection
// entry to obtain the canonical id, and register its labels as functions.
func (ev *Evaler) loadFile(fm *Frame, spec, path string) error {
	code, err := readModuleFile(path)
	if err != nil {
		return err
	}
	src := parse.Source{Name: path, Code: code, IsFile: true}
	tree, err := parse.Parse(src)
	if err != nil {
		return fmt.Errorf("parse module %s: %w", path, err)
	}

	mf := &Frame{
		Evaler:     ev,
		src:        src,
		chunk:      tree.Root,
		pool:       newPool(),
		out:        fm.out,
		digits:     defaultDigits,
		fuzz:       defaultFuzz,
		address:    fm.address,
		addressAlt: fm.addressAlt,
		interrupts: fm.interrupts,
		traps:      make(map[string]*trap),
	}
	if err := mf.runModuleTop(tree.Root); err != nil {
		return fmt.Errorf("initialize module %s: %w", path, err)
	}

	entry := detectionEntry(path)
	idx, ok := findLabel(tree.Root, entry)
	if !ok {
		return fmt.Errorf("module %s does not define %s", path, entry)
	}
	id, has, err := mf.moduleCall(mf, idx, nil)
	if err != nil {
		return fmt.Errorf("module %s: %s: %w", path, entry, err)
	}
	if !has || strings.TrimSpace(id) == "" {
		return fmt.Errorf("module %s: %s did not return a module id", path, entry)
	}
	id = strings.TrimSpace(id)

	ev.mu.Lock()
	if _, loaded := ev.modules[id]; loaded {
		ev.specifiers[spec] = id
		ev.mu.Unlock()
		return nil
	}
	ev.mu.Unlock()

	var fns []Callable
	var specs []FuncSpec
	for i, st := range tree.Root.Stmts {
		l, ok := st.(*parse.LabelStmt)
		if !ok || norm(l.Name) == entry {
			continue
		}
		fns = append(fns, &sourceFn{name: norm(l.Name), frame: mf, idx: i})
		specs = append(specs, FuncSpec{Name: norm(l.Name)})
	}
	if err := ev.addProvided(id, fns, nil); err != nil {
		return err
	}
	ev.mu.Lock()
	ev.modules[id] = &Module{ID: id, From: path, Functions: specs}
	ev.specifiers[spec] = id
	ev.mu.Unlock()
	logger.Printf("loaded module %s from %s", id, path)
	return nil
}

func readModuleFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && filepath.Ext(path) == "" {
		b, err = os.ReadFile(path + ".rex")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// runModuleTop runs a module's top-level statements. EXIT and RETURN end
// initialization without ending the requiring program.
func (fm *Frame) runModuleTop(ch *parse.Chunk) error {
	err := fm.runChunk(ch)
	if f, ok := err.(*flowErr); ok {
		if f.kind == flowExit || f.kind == flowReturn {
			return nil
		}
	}
	return err
}

// detectionEntry derives the label of a module's detection entry from its
// file name: the base name without extension, upper-cased, with every
// non-alphanumeric character folded to an underscore, plus "_MAIN".
func detectionEntry(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var sb strings.Builder
	for i := 0; i < len(base); i++ {
		c := base[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String() + "_MAIN"
}

// sourceFn is a routine of a loaded source module. Calls run against the
// module's own frame, so module-level state persists between calls, while
// output goes to the caller's port.
type sourceFn struct {
	name  string
	frame *Frame
	idx   int
}

func (fn *sourceFn) Name() string { return fn.name }

func (fn *sourceFn) Call(fm *Frame, args []string) (string, bool, error) {
	return fn.frame.moduleCall(fm, fn.idx, args)
}

// moduleCall invokes the routine at idx in fm's chunk, writing output to
// the caller's port.
func (fm *Frame) moduleCall(caller *Frame, idx int, args []string) (string, bool, error) {
	sub := fm.fork(fm.chunk)
	sub.out = caller.out
	sub.interrupts = caller.interrupts
	sub.args = args
	err := sub.runChunkFrom(fm.chunk, idx)
	switch e := err.(type) {
	case nil:
		return "", false, &flowErr{kind: flowExit}
	case *flowErr:
		if e.kind == flowReturn {
			return e.value, e.hasValue, nil
		}
		return "", false, err
	default:
		return "", false, err
	}
}
