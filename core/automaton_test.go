package core

import (
	"fmt"
	"testing"
)

func eq(n int) Predicate[int] {
	return Predicate[int]{
		Name: fmt.Sprint(n),
		Test: func(x int) bool { return x == n },
	}
}

func in(lo, hi int) Predicate[int] {
	return Predicate[int]{
		Name: fmt.Sprintf("[%d..%d]", lo, hi),
		Test: func(x int) bool { return lo <= x && x <= hi },
	}
}

// verdicts checks that the automaton accepts and rejects what it
// should.
func verdicts(t *testing.T, a *Automaton[int], accept, reject [][]int) {
	t.Helper()
	for _, seq := range accept {
		if !a.Matches(seq) {
			t.Errorf("%v should have been accepted", seq)
		}
	}
	for _, seq := range reject {
		if a.Matches(seq) {
			t.Errorf("%v should have been rejected", seq)
		}
	}
}

func TestAutomata(t *testing.T) {
	type test struct {
		name   string
		make   func(b *Builder[int]) *Automaton[int]
		accept [][]int
		reject [][]int
	}

	tests := []test{
		{
			name:   "all",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Everything() },
			accept: [][]int{{}, {1}, {1, 2}, {1, 2, 3, 4, 5, 6, 7}},
		},
		{
			name:   "none",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Nothing() },
			reject: [][]int{{}, {1}, {1, 2}, {1, 2, 3, 4, 5, 6, 7}},
		},
		{
			name:   "empty",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Empty() },
			accept: [][]int{{}},
			reject: [][]int{{1}, {1, 2}},
		},
		{
			name:   "some",
			make:   func(b *Builder[int]) *Automaton[int] { return b.AnySymbol().OneOrMore() },
			accept: [][]int{{1}, {1, 2}},
			reject: [][]int{{}},
		},
		{
			name:   "zero",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(0)) },
			accept: [][]int{{0}},
			reject: [][]int{{}, {1}, {0, 0}, {0, 1}, {1, 1}},
		},
		{
			name:   "not zero",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(0)).Not() },
			accept: [][]int{{}, {1}, {0, 0}, {0, 1}, {1, 1}},
			reject: [][]int{{0}},
		},
		{
			name: "1..2 and not 1",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(in(1, 2)).And(b.Symbol(eq(1)).Not())
			},
			accept: [][]int{{2}},
			reject: [][]int{{1}, {}, {3}},
		},
		{
			name: "1..2 or 2..3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(in(1, 2)).Or(b.Symbol(in(2, 3)))
			},
			accept: [][]int{{1}, {2}, {3}},
			reject: [][]int{{}, {1, 2}, {2, 1}, {4}},
		},
		{
			name: "1..2 and 2..3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(in(1, 2)).And(b.Symbol(in(2, 3)))
			},
			accept: [][]int{{2}},
			reject: [][]int{{1}, {3}, {}, {2, 2}},
		},
		{
			name: "1..2 xor 2..3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(in(1, 2)).Xor(b.Symbol(in(2, 3)))
			},
			accept: [][]int{{1}, {3}},
			reject: [][]int{{2}, {}, {4}, {1, 3}},
		},
		{
			name: "all then all",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Everything().Then(b.Everything())
			},
			accept: [][]int{{}, {1}, {1, 1}, {1, 2, 3, 4, 5, 6}},
		},
		{
			name: "1 then 2",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Symbol(eq(2)))
			},
			accept: [][]int{{1, 2}},
			reject: [][]int{{}, {1}, {2}, {2, 1}, {1, 2, 2}, {1, 1}},
		},
		{
			name: "1 then 2 then 3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Symbol(eq(2))).Then(b.Symbol(eq(3)))
			},
			accept: [][]int{{1, 2, 3}},
			reject: [][]int{{}, {1}, {2}, {2, 1}, {1, 2}, {1, 2, 3, 3}, {1, 2, 2}, {1, 1}},
		},
		{
			name: "1 then anything",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Everything())
			},
			accept: [][]int{{1}, {1, 1}, {1, 2, 1}, {1, 2, 3, 4, 3, 2, 1}},
			reject: [][]int{{}, {2}, {2, 2}, {2, 1}, {2, 1, 3, 4, 1, 2}},
		},
		{
			name: "1 then anything then 1",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Everything()).Then(b.Symbol(eq(1)))
			},
			accept: [][]int{{1, 1}, {1, 2, 1}, {1, 2, 3, 4, 3, 2, 1}},
			reject: [][]int{{}, {1}, {1, 2}, {2, 1}},
		},
		{
			name: "not 1 then 2 then 3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Symbol(eq(2))).Then(b.Symbol(eq(3))).Not()
			},
			accept: [][]int{{}, {1}, {2}, {2, 1}, {1, 2}, {1, 2, 3, 3}, {1, 2, 2}, {1, 1}},
			reject: [][]int{{1, 2, 3}},
		},
		{
			name:   "1 optional",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).Optional() },
			accept: [][]int{{}, {1}},
			reject: [][]int{{2}, {1, 1}},
		},
		{
			name:   "not 1 optional",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).Optional().Not() },
			accept: [][]int{{2}, {1, 1}},
			reject: [][]int{{}, {1}},
		},
		{
			name:   "1 plus",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).OneOrMore() },
			accept: [][]int{{1}, {1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
			reject: [][]int{{}, {1, 2}, {2, 1}},
		},
		{
			name:   "not 1 plus",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).OneOrMore().Not() },
			accept: [][]int{{}, {1, 2}, {2, 1}},
			reject: [][]int{{1}, {1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
		},
		{
			name:   "1 star",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).ZeroOrMore() },
			accept: [][]int{{}, {1}, {1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
			reject: [][]int{{1, 2}, {2, 1}},
		},
		{
			name:   "not 1 star",
			make:   func(b *Builder[int]) *Automaton[int] { return b.Symbol(eq(1)).ZeroOrMore().Not() },
			accept: [][]int{{1, 2}, {2, 1}},
			reject: [][]int{{}, {1}, {1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
		},
		{
			name:   "dot",
			make:   func(b *Builder[int]) *Automaton[int] { return b.AnySymbol() },
			accept: [][]int{{0}, {1}, {2}},
			reject: [][]int{{}, {1, 1}},
		},
		{
			name:   "not dot",
			make:   func(b *Builder[int]) *Automaton[int] { return b.AnySymbol().Not() },
			accept: [][]int{{}, {1, 1}},
			reject: [][]int{{0}, {1}, {2}},
		},
		{
			name: "1 at four from end",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Everything().Then(b.Symbol(eq(1))).Then(b.AnySymbol()).Then(b.AnySymbol()).Then(b.AnySymbol())
			},
			accept: [][]int{{1, 0, 0, 0}, {1, 1, 0, 0}, {1, 0, 1, 1}, {1, 1, 0, 1, 1}, {0, 1, 0, 1, 1}, {0, 0, 1, 0, 1, 1}, {1, 0, 1, 0, 1, 1}},
			reject: [][]int{{}, {1}, {1, 1}, {1, 1, 1}},
		},
		{
			name: "1 none 1",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Nothing()).Then(b.Symbol(eq(1)))
			},
			reject: [][]int{{}, {1}, {1, 2}, {2, 1}, {2, 2, 2, 2}, {2, 1, 1, 2}, {1, 1}, {1, 1, 1}},
		},
		{
			name: "not not 1",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Not().Not()
			},
			accept: [][]int{{1}},
			reject: [][]int{{}, {1, 1}, {2}},
		},
		{
			name: "not nothing not",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Nothing().Not().Not()
			},
			reject: [][]int{{}, {1}, {1, 2}},
		},
		{
			name: "not 1 then 2",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Not().Then(b.Symbol(eq(2)))
			},
			accept: [][]int{{2}, {2, 2}, {1, 1, 2}, {3, 2}},
			reject: [][]int{{}, {1, 2}, {1}, {2, 1}},
		},
		{
			name: "1 then not 2",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Then(b.Symbol(eq(2)).Not())
			},
			accept: [][]int{{1}, {1, 1}, {1, 2, 2}, {1, 3}},
			reject: [][]int{{}, {1, 2}, {2}, {2, 1}},
		},
		{
			name: "not 1, repeated",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Symbol(eq(1)).Not().OneOrMore()
			},
			// Every sequence splits into parts that aren't [1],
			// except [1] itself: [1,1] is [1,1].
			accept: [][]int{{}, {2}, {1, 1}, {1, 2}, {2, 1, 2}},
			reject: [][]int{{1}},
		},
		{
			name: "containing 1 2 3",
			make: func(b *Builder[int]) *Automaton[int] {
				return b.Everything().Then(b.Symbol(eq(1))).Then(b.Symbol(eq(2))).Then(b.Symbol(eq(3))).Then(b.Everything())
			},
			accept: [][]int{{0, 0, 1, 2, 3, 0, 0}, {1, 2, 3, 1, 2, 3}, {1, 2, 3}},
			reject: [][]int{{1, 2}, {3, 2, 1}, {}, {1, 2, 4, 3}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.make(NewBuilder[int]())
			if err := a.Check(); err != nil {
				t.Fatal(err)
			}
			verdicts(t, a, tc.accept, tc.reject)
		})
	}
}

func TestAcceptanceIsSingleCondition(t *testing.T) {
	b := NewBuilder[int]()
	a := b.Symbol(eq(1)).Or(b.Symbol(eq(2)))
	if !a.Acceptance().Positive {
		t.Fatal(a.Acceptance())
	}
	if a.Owner(a.Acceptance().Node) != Top {
		t.Fatal(a.Owner(a.Acceptance().Node))
	}
	n := a.Not()
	if n.Acceptance().Positive {
		t.Fatal(n.Acceptance())
	}
	if got := len(n.Scopes()); got != 1 {
		t.Fatal(got)
	}
}

func TestOperandsUnchanged(t *testing.T) {
	b := NewBuilder[int]()
	x := b.Symbol(eq(1))
	y := b.Symbol(eq(2))
	nodes, eps := len(x.Nodes()), len(x.EpsilonEdges())

	_ = x.Then(y)
	_ = x.Not()
	_ = x.OneOrMore()

	if len(x.Nodes()) != nodes || len(x.EpsilonEdges()) != eps {
		t.Fatal("operand changed")
	}
	if len(x.Scopes()) != 0 {
		t.Fatal("operand gained a scope")
	}
	verdicts(t, x, [][]int{{1}}, [][]int{{}, {2}, {1, 1}})
}

func TestSharedNodesPanic(t *testing.T) {
	b := NewBuilder[int]()
	x := b.Symbol(eq(1))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		v, is := r.(*InvariantViolation)
		if !is {
			t.Fatalf("%T", r)
		}
		if v.Op != "then" || len(v.Nodes) != 2 {
			t.Fatal(v)
		}
	}()

	x.Then(x)
}

func TestArenaMismatchPanics(t *testing.T) {
	x := NewBuilder[int]().Symbol(eq(1))
	y := NewBuilder[int]().Symbol(eq(1))

	defer func() {
		if _, is := recover().(*InvariantViolation); !is {
			t.Fatal("expected an *InvariantViolation")
		}
	}()

	x.Or(y)
}

func TestCopy(t *testing.T) {
	b := NewBuilder[int]()
	x := b.Symbol(eq(1)).Not()
	y := x.Copy()

	for _, n := range y.Nodes() {
		for _, m := range x.Nodes() {
			if n == m {
				t.Fatalf("%s shared", n)
			}
		}
	}

	// Combining the copy with the original is fine.
	a := x.Then(y)
	verdicts(t, a, [][]int{{}, {2}, {1, 1}, {2, 1, 1}}, [][]int{{1}})
}

func TestNegativeGuardAtTopIsInvalid(t *testing.T) {
	b := NewBuilder[int]()
	arena := b.Arena()
	n1, n2 := arena.Node(), arena.Node()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		if _, is := r.(*InvariantViolation); !is {
			t.Fatalf("%T %v", r, r)
		}
	}()
	b.Graph([]Node{n1}, Active(n2), nil, []EpsilonEdge{
		{Source: Inactive(n1), Target: n2},
	})
	t.Fatal("Graph accepted a negative guard at the top level")
}

func TestGraphValid(t *testing.T) {
	b := NewBuilder[int]()
	arena := b.Arena()
	n1, n2 := arena.Node(), arena.Node()

	// Valid graphs still build and match.
	a := b.Graph([]Node{n1}, Active(n2), nil, []EpsilonEdge{
		{Source: Active(n1), Target: n2},
	})
	if err := a.Check(); err != nil {
		t.Fatal(err)
	}
	if !a.Matches(nil) {
		t.Fatal("should accept the empty sequence")
	}
}

func TestSymbolWithoutPredicatesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	NewBuilder[int]().Symbol()
}

func TestRunsAreDeduplicated(t *testing.T) {
	b := NewBuilder[int]()
	// Everything then [1]: the complement scope is entered once, and
	// its run never changes.
	a := b.Everything().Then(b.Symbol(eq(1)))

	st := a.Start()
	for i := 0; i < 10; i++ {
		st = a.Step(st, 2)
	}
	if n := st.Runs(); n != 1 {
		t.Fatalf("%d runs", n)
	}

	// [1] then !(2): a fresh run starts after every [1], but equal runs
	// collapse.
	c := b.Symbol(eq(1)).OneOrMore().Then(b.Symbol(eq(2)).Not())
	st = c.Start()
	for i := 0; i < 10; i++ {
		st = c.Step(st, 1)
	}
	if n := st.Runs(); 3 < n {
		t.Fatalf("%d runs", n)
	}
	if !c.Accepting(st) {
		t.Fatal("should accept")
	}
}
