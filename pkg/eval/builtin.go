package eval

// builtinFns holds the interpreter built-in functions, shared by all
// Evaler instances. The builtin_fn_*.go files register their groups from
// init.
var builtinFns = make(map[string]Callable)

// builtinDocs holds one documentation line per built-in, used by
// introspection and editor hover.
var builtinDocs = make(map[string]string)

func addBuiltinFns(fns map[string]any) {
	for name, impl := range fns {
		builtinFns[norm(name)] = NewGoFn(name, impl)
	}
}

func addBuiltinDocs(docs map[string]string) {
	for name, doc := range docs {
		builtinDocs[norm(name)] = doc
	}
}

// Doc returns the documentation line of a built-in function.
func Doc(name string) (string, bool) {
	doc, ok := builtinDocs[norm(name)]
	return doc, ok
}

// noValue is the cause of NOVALUE conditions: reading a symbol, or a
// stem tail with no default, that has not been assigned.
type noValue struct{ Name string }

func (e noValue) Error() string { return "no value for " + e.Name }

// condOf picks the condition an error raises as when it surfaces from a
// function or operation.
func condOf(err error) string {
	if _, ok := err.(noValue); ok {
		return CondNoValue
	}
	return CondSyntax
}
