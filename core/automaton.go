/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"slices"
	"sync"
)

// Automaton is a nondeterministic automaton over symbols of type S.
//
// An Automaton has initial nodes, a single acceptance Condition,
// predicate edges that consume symbols, and epsilon edges that
// don't.  Every node belongs either to the Top level or to a
// complement Scope created by Not.
//
// An Automaton is immutable.  Combinators return new Automata, and
// any number of goroutines can match against the same Automaton at
// once.
type Automaton[S any] struct {
	arena    *Arena
	initial  []Node
	accept   Condition
	owner    map[Node]Scope
	preds    map[Node]PredicateEdge[S]
	epsilons []EpsilonEdge
	scopes   map[Scope]scopeInfo

	once      sync.Once
	compiled  *plan
	violation *InvariantViolation
}

type scopeInfo struct {
	parent Scope
	entry  []Node
}

func newAutomaton[S any](arena *Arena) *Automaton[S] {
	return &Automaton[S]{
		arena:  arena,
		owner:  make(map[Node]Scope),
		preds:  make(map[Node]PredicateEdge[S]),
		scopes: make(map[Scope]scopeInfo),
	}
}

// Arena returns the Arena this Automaton's nodes came from.
func (a *Automaton[S]) Arena() *Arena {
	return a.arena
}

// Initial returns the initial nodes in ascending order.
func (a *Automaton[S]) Initial() []Node {
	return slices.Clone(a.initial)
}

// Acceptance returns the Condition that decides acceptance.
func (a *Automaton[S]) Acceptance() Condition {
	return a.accept
}

// Nodes returns every node in ascending order.
func (a *Automaton[S]) Nodes() []Node {
	acc := make([]Node, 0, len(a.owner))
	for n := range a.owner {
		acc = append(acc, n)
	}
	slices.Sort(acc)
	return acc
}

// PredicateEdges returns the predicate edges ordered by source.
func (a *Automaton[S]) PredicateEdges() []PredicateEdge[S] {
	acc := make([]PredicateEdge[S], 0, len(a.preds))
	for _, e := range a.preds {
		acc = append(acc, e)
	}
	slices.SortFunc(acc, func(x, y PredicateEdge[S]) int {
		return int(x.Source.Node) - int(y.Source.Node)
	})
	return acc
}

// EpsilonEdges returns the epsilon edges in the order they were
// added.
func (a *Automaton[S]) EpsilonEdges() []EpsilonEdge {
	return slices.Clone(a.epsilons)
}

// Scopes returns the complement scopes in ascending order.  Top is
// not included.
func (a *Automaton[S]) Scopes() []Scope {
	acc := make([]Scope, 0, len(a.scopes))
	for s := range a.scopes {
		acc = append(acc, s)
	}
	slices.Sort(acc)
	return acc
}

// Owner returns the Scope that owns the node.
func (a *Automaton[S]) Owner(n Node) Scope {
	return a.owner[n]
}

// Parent returns the Scope that encloses the given one.
func (a *Automaton[S]) Parent(s Scope) Scope {
	return a.scopes[s].parent
}

// Entry returns the nodes activated when a run of the scope starts.
// The entry of Top is the initial nodes.
func (a *Automaton[S]) Entry(s Scope) []Node {
	if s == Top {
		return a.Initial()
	}
	return slices.Clone(a.scopes[s].entry)
}

// Depth returns the number of complement scopes that enclose the
// node.
func (a *Automaton[S]) Depth(n Node) int {
	d := 0
	for s := a.owner[n]; s != Top; s = a.scopes[s].parent {
		d++
	}
	return d
}

// Check reports the first broken structural invariant, if any.
func (a *Automaton[S]) Check() error {
	if _, v := a.plan(); v != nil {
		return v
	}
	return nil
}

func (a *Automaton[S]) clone() *Automaton[S] {
	b := newAutomaton[S](a.arena)
	b.initial = slices.Clone(a.initial)
	b.accept = a.accept
	for n, s := range a.owner {
		b.owner[n] = s
	}
	for n, e := range a.preds {
		b.preds[n] = e
	}
	b.epsilons = slices.Clone(a.epsilons)
	for s, info := range a.scopes {
		b.scopes[s] = scopeInfo{
			parent: info.parent,
			entry:  slices.Clone(info.entry),
		}
	}
	return b
}

// merge unions the graphs of two operands.  The result has no
// initial nodes and no meaningful acceptance yet.
func merge[S any](op string, x, y *Automaton[S]) *Automaton[S] {
	if x.arena != y.arena {
		panic(violation(op, "operands come from different arenas"))
	}
	m := x.clone()
	var shared []Node
	for n, s := range y.owner {
		if _, have := m.owner[n]; have {
			shared = append(shared, n)
			continue
		}
		m.owner[n] = s
	}
	if 0 < len(shared) {
		slices.Sort(shared)
		panic(violation(op, "operands share nodes", shared...))
	}
	for n, e := range y.preds {
		if _, have := m.preds[n]; have {
			panic(violation(op, "duplicate predicate edge source", n))
		}
		m.preds[n] = e
	}
	m.epsilons = append(m.epsilons, y.epsilons...)
	for s, info := range y.scopes {
		if _, have := m.scopes[s]; have {
			panic(violation(op, "operands share scope "+s.String()))
		}
		m.scopes[s] = scopeInfo{
			parent: info.parent,
			entry:  slices.Clone(info.entry),
		}
	}
	return m
}

// Copy returns an equivalent Automaton built from fresh nodes and
// scopes of the same Arena.
//
// An Automaton can't be combined with itself (the operands would
// share nodes), so use Copy to reuse one, as in a.Then(a.Copy()).
func (a *Automaton[S]) Copy() *Automaton[S] {
	nodes := make(map[Node]Node, len(a.owner))
	for _, n := range a.Nodes() {
		nodes[n] = a.arena.Node()
	}
	scopes := map[Scope]Scope{Top: Top}
	for _, s := range a.Scopes() {
		scopes[s] = a.arena.Scope()
	}
	renamed := func(ns []Node) []Node {
		acc := make([]Node, len(ns))
		for i, n := range ns {
			acc[i] = nodes[n]
		}
		return acc
	}
	cond := func(c Condition) Condition {
		return Condition{Node: nodes[c.Node], Positive: c.Positive}
	}

	b := newAutomaton[S](a.arena)
	b.initial = renamed(a.initial)
	b.accept = cond(a.accept)
	for n, s := range a.owner {
		b.owner[nodes[n]] = scopes[s]
	}
	for n, e := range a.preds {
		b.preds[nodes[n]] = PredicateEdge[S]{
			Source:     cond(e.Source),
			Target:     nodes[e.Target],
			Predicates: e.Predicates,
		}
	}
	for _, e := range a.epsilons {
		b.epsilons = append(b.epsilons, EpsilonEdge{
			Source: cond(e.Source),
			Target: nodes[e.Target],
		})
	}
	for s, info := range a.scopes {
		b.scopes[scopes[s]] = scopeInfo{
			parent: scopes[info.parent],
			entry:  renamed(info.entry),
		}
	}
	return b
}

func sortedUnion(xs, ys []Node) []Node {
	acc := make([]Node, 0, len(xs)+len(ys))
	acc = append(acc, xs...)
	acc = append(acc, ys...)
	slices.Sort(acc)
	return slices.Compact(acc)
}
