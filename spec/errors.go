package spec

import (
	"fmt"

	"github.com/Comcast/regular/values"
)

// UnknownNodeKind is returned when an expression tree has a node
// with a kind that isn't known.
type UnknownNodeKind struct {
	Kind string
}

func (e *UnknownNodeKind) Error() string {
	return fmt.Sprintf("unknown node kind %q", e.Kind)
}

// BadNode is returned when an expression tree node is malformed.
type BadNode struct {
	Node interface{}
	Msg  string
}

func (e *BadNode) Error() string {
	return fmt.Sprintf("bad node %s: %s", values.Key(e.Node), e.Msg)
}

// UnknownPredicate is returned for a reference to an undefined named
// predicate.
type UnknownPredicate struct {
	Name string
}

func (e *UnknownPredicate) Error() string {
	return fmt.Sprintf("unknown predicate %q", e.Name)
}

// SpecNotCompiled is returned when a Spec is used before Compile.
type SpecNotCompiled struct {
	Spec string
}

func (e *SpecNotCompiled) Error() string {
	return fmt.Sprintf("spec %q isn't compiled", e.Spec)
}

// ExampleFailed reports an example sequence with the wrong verdict.
type ExampleFailed struct {
	Spec     string
	Sequence []interface{}
	Accept   bool
}

func (e *ExampleFailed) Error() string {
	want := "rejected"
	if e.Accept {
		want = "accepted"
	}
	return fmt.Sprintf("spec %q: %s should be %s", e.Spec, values.Key(e.Sequence), want)
}
