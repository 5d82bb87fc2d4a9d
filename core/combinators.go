package core

import (
	"slices"
)

// Builder makes primitive Automata from its Arena.
//
// All Automata that will be combined must come from the same
// Builder (or at least the same Arena).
type Builder[S any] struct {
	arena *Arena
}

// NewBuilder makes a Builder with a fresh Arena.
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{
		arena: NewArena(),
	}
}

// BuilderFor makes a Builder that allocates from the given Arena.
func BuilderFor[S any](arena *Arena) *Builder[S] {
	return &Builder[S]{
		arena: arena,
	}
}

// Arena returns the Builder's Arena.
func (b *Builder[S]) Arena() *Arena {
	return b.arena
}

// Nothing makes an Automaton that accepts no sequence at all, not
// even the empty one.  It has no initial nodes and one unreachable
// accepting node.
func (b *Builder[S]) Nothing() *Automaton[S] {
	n := b.arena.Node()
	a := newAutomaton[S](b.arena)
	a.owner[n] = Top
	a.accept = Active(n)
	return a
}

// Empty makes an Automaton that accepts only the empty sequence.
func (b *Builder[S]) Empty() *Automaton[S] {
	return empty[S](b.arena)
}

func empty[S any](arena *Arena) *Automaton[S] {
	n := arena.Node()
	a := newAutomaton[S](arena)
	a.owner[n] = Top
	a.initial = []Node{n}
	a.accept = Active(n)
	return a
}

// Everything makes an Automaton that accepts every sequence.
func (b *Builder[S]) Everything() *Automaton[S] {
	return b.Nothing().Not()
}

// Symbol makes an Automaton that accepts exactly the one-symbol
// sequences that some given predicate accepts.
func (b *Builder[S]) Symbol(ps ...Predicate[S]) *Automaton[S] {
	if len(ps) == 0 {
		panic(violation("symbol", "no predicates"))
	}
	from, to := b.arena.Node(), b.arena.Node()
	a := newAutomaton[S](b.arena)
	a.owner[from] = Top
	a.owner[to] = Top
	a.initial = []Node{from}
	a.accept = Active(to)
	a.preds[from] = PredicateEdge[S]{
		Source:     Active(from),
		Target:     to,
		Predicates: slices.Clone(ps),
	}
	return a
}

// AnySymbol makes an Automaton that accepts every one-symbol
// sequence.
func (b *Builder[S]) AnySymbol() *Automaton[S] {
	return b.Symbol(Always[S]())
}

// Graph assembles an Automaton by hand.
//
// Every node must have been allocated from the Builder's Arena, and
// every node is placed at the Top level.  Negative conditions only
// make sense for nodes inside a complement scope, so a graph that
// uses one (or otherwise fails Check) panics with an
// *InvariantViolation here rather than when it's matched.
func (b *Builder[S]) Graph(initial []Node, accept Condition, preds []PredicateEdge[S], epsilons []EpsilonEdge) *Automaton[S] {
	a := newAutomaton[S](b.arena)
	add := func(n Node) {
		if n == 0 || b.arena.nodes < uint32(n) {
			panic(violation("graph", "node not from this arena", n))
		}
		a.owner[n] = Top
	}
	for _, n := range initial {
		add(n)
	}
	a.initial = sortedUnion(initial, nil)
	add(accept.Node)
	a.accept = accept
	for _, e := range preds {
		add(e.Source.Node)
		add(e.Target)
		if _, have := a.preds[e.Source.Node]; have {
			panic(violation("graph", "duplicate predicate edge source", e.Source.Node))
		}
		e.Predicates = slices.Clone(e.Predicates)
		a.preds[e.Source.Node] = e
	}
	for _, e := range epsilons {
		add(e.Source.Node)
		add(e.Target)
		a.epsilons = append(a.epsilons, e)
	}
	a.mustPlan()
	return a
}

// Then makes an Automaton that accepts xy when a accepts x and o
// accepts y.
//
// The graphs are joined by an epsilon edge from a's acceptance to
// each of o's initial nodes.
func (a *Automaton[S]) Then(o *Automaton[S]) *Automaton[S] {
	m := merge("then", a, o)
	for _, n := range o.initial {
		m.epsilons = append(m.epsilons, EpsilonEdge{
			Source: a.accept,
			Target: n,
		})
	}
	m.initial = slices.Clone(a.initial)
	m.accept = o.accept
	return m
}

// Or makes an Automaton that accepts what either operand accepts.
//
// Both acceptance conditions lead to a fresh join node, which is
// the single acceptance of the result.
func (a *Automaton[S]) Or(o *Automaton[S]) *Automaton[S] {
	m := merge("or", a, o)
	j := m.arena.Node()
	m.owner[j] = Top
	m.epsilons = append(m.epsilons,
		EpsilonEdge{Source: a.accept, Target: j},
		EpsilonEdge{Source: o.accept, Target: j})
	m.initial = sortedUnion(a.initial, o.initial)
	m.accept = Active(j)
	return m
}

// Not makes an Automaton that accepts exactly the sequences a
// rejects.
//
// The operand's graph becomes a new complement scope, and the
// acceptance polarity flips.  Nothing is determinized.  A run of the
// scope starts wherever the graph is entered, and the negative
// acceptance holds when some run lacks the operand's accepting
// node.
func (a *Automaton[S]) Not() *Automaton[S] {
	c := a.arena.Scope()
	m := a.clone()
	for n, s := range m.owner {
		if s == Top {
			m.owner[n] = c
		}
	}
	for s, info := range m.scopes {
		if info.parent == Top {
			info.parent = c
			m.scopes[s] = info
		}
	}

	accept := m.accept
	if !accept.Positive {
		// The flipped condition must name a node of the new scope.
		j := m.arena.Node()
		m.owner[j] = c
		m.epsilons = append(m.epsilons, EpsilonEdge{Source: accept, Target: j})
		accept = Active(j)
	}

	entry := m.initial
	if len(entry) == 0 {
		// An anchor gives the scope somewhere to start.
		anchor := m.arena.Node()
		m.owner[anchor] = c
		entry = []Node{anchor}
	}

	m.scopes[c] = scopeInfo{
		parent: Top,
		entry:  entry,
	}
	m.initial = slices.Clone(entry)
	m.accept = accept.Not()
	return m
}

// OneOrMore makes an Automaton that accepts one or more
// concatenated sequences that a accepts.
func (a *Automaton[S]) OneOrMore() *Automaton[S] {
	m := a.clone()
	for _, n := range a.initial {
		m.epsilons = append(m.epsilons, EpsilonEdge{
			Source: a.accept,
			Target: n,
		})
	}
	return m
}

// Optional makes an Automaton that accepts the empty sequence and
// whatever a accepts.
func (a *Automaton[S]) Optional() *Automaton[S] {
	return a.Or(empty[S](a.arena))
}

// ZeroOrMore is OneOrMore followed by Optional.
func (a *Automaton[S]) ZeroOrMore() *Automaton[S] {
	return a.OneOrMore().Optional()
}

// And makes an Automaton that accepts what both operands accept.
//
// This automaton is !(!a | !o).
func (a *Automaton[S]) And(o *Automaton[S]) *Automaton[S] {
	return a.Not().Or(o.Not()).Not()
}

// Xor makes an Automaton that accepts what exactly one operand
// accepts.
//
// Each operand appears twice in (a & !o) | (!a & o), so the second
// appearances are copies.
func (a *Automaton[S]) Xor(o *Automaton[S]) *Automaton[S] {
	a2, o2 := a.Copy(), o.Copy()
	return a.And(o.Not()).Or(a2.Not().And(o2))
}
