package tools

import (
	"slices"
	"testing"

	"github.com/Comcast/regular/core"
)

func TestAnalysis(t *testing.T) {
	a := core.Compile(core.TurnstileExpression())

	x := Analyze(a)
	if 0 < len(x.Errors) {
		t.Fatal(x.Errors)
	}
	if x.Nodes != len(a.Nodes()) {
		t.Fatal(x.Nodes)
	}
	if x.Scopes == 0 {
		t.Fatal("no scopes")
	}
	if x.MaxDepth < 2 {
		t.Fatal(x.MaxDepth)
	}
	if x.NegativeEdges == 0 {
		t.Fatal("no negative edges")
	}
	if x.Exits == 0 {
		t.Fatal("no exits")
	}
	if !slices.Contains(x.Predicates, `"coin"`) || !slices.Contains(x.Predicates, `"push"`) {
		t.Fatal(x.Predicates)
	}
}

func TestAnalysisUnreachableAndDead(t *testing.T) {
	b := core.NewBuilder[string]()
	arena := b.Arena()
	n1, n2, n3, n4 := arena.Node(), arena.Node(), arena.Node(), arena.Node()

	a := b.Graph([]core.Node{n1}, core.Active(n2),
		[]core.PredicateEdge[string]{
			{Source: core.Active(n1), Target: n2, Predicates: []core.Predicate[string]{core.IsPredicate("a")}},
		},
		[]core.EpsilonEdge{
			{Source: core.Active(n1), Target: n3},
			{Source: core.Active(n4), Target: n2},
		})

	x := Analyze(a)
	if 0 < len(x.Errors) {
		t.Fatal(x.Errors)
	}
	if x.Nodes != 4 || x.PredicateEdges != 1 || x.EpsilonEdges != 2 {
		t.Fatalf("%#v", x)
	}
	if x.NegativeEdges != 0 || x.Exits != 0 || x.Scopes != 0 || x.MaxDepth != 0 {
		t.Fatalf("%#v", x)
	}
	if !slices.Equal(x.Unreachable, []core.Node{n4}) {
		t.Fatal(x.Unreachable)
	}
	if !slices.Equal(x.Dead, []core.Node{n3}) {
		t.Fatal(x.Dead)
	}
}
