package eval

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync"
)

// targetRegistry holds the address targets registered with an Evaler. The
// read side is hot, every dispatch looks its target up, so it uses a
// reader-biased lock.
type targetRegistry struct {
	xsync.RBMutex
	targets map[string]Target
}

func newTargetRegistry() *targetRegistry {
	return &targetRegistry{targets: make(map[string]Target)}
}

// add registers a target under its canonical name. Registering the same
// target again is a no-op; a different target under a taken name is an
// error.
func (reg *targetRegistry) add(t Target) error {
	name := norm(t.Name())
	reg.Lock()
	defer reg.Unlock()
	if old, ok := reg.targets[name]; ok {
		if old == t {
			return nil
		}
		return fmt.Errorf("address target %s is already registered", name)
	}
	reg.targets[name] = t
	return nil
}

func (reg *targetRegistry) lookup(name string) (Target, bool) {
	tk := reg.RLock()
	t, ok := reg.targets[norm(name)]
	reg.RUnlock(tk)
	return t, ok
}

func (reg *targetRegistry) names() []string {
	tk := reg.RLock()
	out := make([]string, 0, len(reg.targets))
	for name := range reg.targets {
		out = append(out, name)
	}
	reg.RUnlock(tk)
	sort.Strings(out)
	return out
}

// lookupFunc resolves a function name against the built-ins and then the
// functions provided by loaded modules. It returns nil when the name is
// not bound.
func (ev *Evaler) lookupFunc(name string) Callable {
	n := norm(name)
	if fn, ok := builtinFns[n]; ok {
		return fn
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.functions[n]
}

// lookupOp resolves an operation name provided by loaded modules.
func (ev *Evaler) lookupOp(name string) Callable {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.operations[norm(name)]
}

// addProvided merges one module's functions and operations into the
// Evaler's registries. All names are checked before any is added, so a
// conflicting load registers nothing. Names already provided by the same
// module are skipped; names provided by a different module are conflicts.
func (ev *Evaler) addProvided(id string, functions, operations []Callable) error {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	check := func(kind string, fns []Callable) error {
		for _, fn := range fns {
			n := norm(fn.Name())
			if provider, ok := ev.providers[n]; ok && provider != id {
				return fmt.Errorf("%s %s is already provided by module %s",
					kind, n, provider)
			}
			if _, ok := builtinFns[n]; ok && kind == "function" {
				return fmt.Errorf("function %s would shadow a built-in", n)
			}
		}
		return nil
	}
	if err := check("function", functions); err != nil {
		return err
	}
	if err := check("operation", operations); err != nil {
		return err
	}
	for _, fn := range functions {
		n := norm(fn.Name())
		ev.functions[n] = fn
		ev.providers[n] = id
	}
	for _, fn := range operations {
		n := norm(fn.Name())
		ev.operations[n] = fn
		ev.providers[n] = id
	}
	return nil
}

// FunctionNames returns the sorted names of all callable functions, both
// built-in and module-provided.
func (ev *Evaler) FunctionNames() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	out := make([]string, 0, len(builtinFns)+len(ev.functions))
	for name := range builtinFns {
		out = append(out, name)
	}
	for name := range ev.functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ModuleIDs returns the sorted canonical ids of all loaded modules.
func (ev *Evaler) ModuleIDs() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	out := make([]string, 0, len(ev.modules))
	for id := range ev.modules {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TargetNames returns the sorted names of all registered address targets.
func (ev *Evaler) TargetNames() []string {
	return ev.targets.names()
}
