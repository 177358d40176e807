package eval

import (
	"fmt"
	"reflect"

	"github.com/rexlang/rex/pkg/eval/errs"
)

// GoFn wraps a Go function as a script-callable function or operation
// using reflection.
//
// Parameters are passed following these rules:
//
// 1. If the first parameter has type *Frame, it gets the current frame.
//
// 2. The remaining parameters take the call's arguments in order. A string
// parameter gets the argument as is; an int parameter gets the argument
// converted to a whole number under the caller's numeric settings.
//
// 3. Trailing pointer parameters (*string, *int) are optional arguments;
// they are nil when the call site omits them.
//
// 4. A final variadic ...string parameter collects any remaining
// arguments.
//
// Return values may be (), (error), (string) or (string, error). A non-nil
// error raises SYNTAX at the call site; a returned string is the value of
// the call.
type GoFn struct {
	name string
	impl any

	// Type information of impl.
	frame    bool
	required []reflect.Type
	optional []reflect.Type
	variadic bool
}

var (
	frameType  = reflect.TypeOf((*Frame)(nil))
	stringType = reflect.TypeOf("")
	intType    = reflect.TypeOf(0)
	// error(nil) is treated as nil by reflect.TypeOf, so we first get the
	// type of *error and use Elem to obtain type of error.
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// NewGoFn wraps a Go function. It panics when the signature does not
// follow the rules above, so that a misdeclared function fails at
// registration time rather than on first call.
func NewGoFn(name string, impl any) *GoFn {
	implType := reflect.TypeOf(impl)
	if implType == nil || implType.Kind() != reflect.Func {
		panic("NewGoFn: impl must be a function")
	}
	fn := &GoFn{name: name, impl: impl}

	i := 0
	if i < implType.NumIn() && implType.In(i) == frameType {
		fn.frame = true
		i++
	}
	for ; i < implType.NumIn(); i++ {
		paramType := implType.In(i)
		if implType.IsVariadic() && i == implType.NumIn()-1 {
			if paramType.Elem() != stringType {
				panic("NewGoFn: variadic parameter of " + name + " must be ...string")
			}
			fn.variadic = true
			break
		}
		switch {
		case paramType == stringType || paramType == intType:
			if len(fn.optional) > 0 {
				panic("NewGoFn: required parameter of " + name + " after optional")
			}
			fn.required = append(fn.required, paramType)
		case paramType.Kind() == reflect.Pointer &&
			(paramType.Elem() == stringType || paramType.Elem() == intType):
			fn.optional = append(fn.optional, paramType)
		default:
			panic("NewGoFn: unsupported parameter type " + paramType.String() +
				" of " + name)
		}
	}

	switch implType.NumOut() {
	case 0:
	case 1:
		if out := implType.Out(0); out != stringType && out != errorType {
			panic("NewGoFn: unsupported return type " + out.String() + " of " + name)
		}
	case 2:
		if implType.Out(0) != stringType || implType.Out(1) != errorType {
			panic("NewGoFn: unsupported return types of " + name)
		}
	default:
		panic("NewGoFn: too many return values of " + name)
	}
	return fn
}

// Name returns the name the function was wrapped under.
func (fn *GoFn) Name() string { return fn.name }

// Call invokes the function. It returns the value of the call, whether
// there is one, and any error from arity checking, argument conversion or
// the implementation itself.
func (fn *GoFn) Call(fm *Frame, args []string) (string, bool, error) {
	low, high := len(fn.required), len(fn.required)+len(fn.optional)
	if fn.variadic {
		high = -1
	}
	if len(args) < low || high != -1 && len(args) > high {
		return "", false, errs.ArityMismatch{
			What:     "arguments to " + norm(fn.name),
			ValidLow: low, ValidHigh: high, Actual: len(args)}
	}

	var in []reflect.Value
	if fn.frame {
		in = append(in, reflect.ValueOf(fm))
	}
	next := 0
	for _, typ := range fn.required {
		v, err := convertArg(fm, typ, args[next], next)
		if err != nil {
			return "", false, err
		}
		in = append(in, v)
		next++
	}
	for _, typ := range fn.optional {
		if next < len(args) {
			v, err := convertArg(fm, typ.Elem(), args[next], next)
			if err != nil {
				return "", false, err
			}
			ptr := reflect.New(typ.Elem())
			ptr.Elem().Set(v)
			in = append(in, ptr)
			next++
		} else {
			in = append(in, reflect.Zero(typ))
		}
	}
	if fn.variadic {
		for ; next < len(args); next++ {
			in = append(in, reflect.ValueOf(args[next]))
		}
	}

	implType := reflect.TypeOf(fn.impl)
	outs := reflect.ValueOf(fn.impl).Call(in)
	if n := implType.NumOut(); n > 0 && implType.Out(n-1) == errorType {
		if e := outs[n-1].Interface(); e != nil {
			return "", false, e.(error)
		}
		outs = outs[:n-1]
	}
	if len(outs) == 1 {
		return outs[0].String(), true, nil
	}
	return "", false, nil
}

func convertArg(fm *Frame, typ reflect.Type, arg string, i int) (reflect.Value, error) {
	if typ == stringType {
		return reflect.ValueOf(arg), nil
	}
	n, err := fm.numCtx().Whole(arg)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("wrong type of %d'th argument: %v", i+1, err)
	}
	return reflect.ValueOf(n), nil
}
