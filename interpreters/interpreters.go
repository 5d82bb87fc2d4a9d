// Package interpreters collects the predicate interpreters.
//
// An interpreter turns source code (usually a string) found in a
// spec into a predicate over JSON-like symbols.
package interpreters

import (
	"context"
	"fmt"

	"github.com/Comcast/regular/interpreters/ecmascript"
	"github.com/Comcast/regular/interpreters/noop"
	"github.com/Comcast/regular/values"
)

// Interpreter makes predicates from source code.
type Interpreter interface {
	// Compile prepares the source.  Compilation is optional:
	// Predicate accepts a nil compiled value.
	Compile(ctx context.Context, src interface{}) (interface{}, error)

	// Predicate returns a function that evaluates the source
	// against a symbol.  The function must be safe for concurrent
	// use.
	Predicate(ctx context.Context, src interface{}, compiled interface{}) (func(values.Symbol) bool, error)
}

// Map maps interpreter names to Interpreters.
type Map map[string]Interpreter

// UnknownInterpreter is the error Find returns for a name it doesn't
// know.
type UnknownInterpreter struct {
	Name string
}

func (e *UnknownInterpreter) Error() string {
	return fmt.Sprintf("unknown interpreter %q", e.Name)
}

// Find returns the named Interpreter.  The empty name means
// "ecmascript".
func (m Map) Find(name string) (Interpreter, error) {
	if name == "" {
		name = "ecmascript"
	}
	i, have := m[name]
	if !have {
		return nil, &UnknownInterpreter{name}
	}
	return i, nil
}

// Standard returns a Map with the standard interpreters.
func Standard() Map {
	is := make(Map)

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es
	is["goja"] = es

	ext := ecmascript.NewInterpreter()
	ext.Extended = true
	is["ecmascript-ext"] = ext
	is["ecmascript-5.1-ext"] = ext

	is["noop"] = noop.NewInterpreter()

	return is
}
