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
	"strconv"
	"strings"
)

// Node is an opaque handle for a point in an Automaton's graph.
//
// Nodes carry no data.  Two Nodes are the same node iff they are
// equal handles from the same Arena.
type Node uint32

func (n Node) String() string {
	return "n" + strconv.FormatUint(uint64(n), 10)
}

// Scope identifies a complement scope: the part of a graph that
// was the operand of a Not.  Top is the outermost level.
type Scope uint32

// Top is the outermost Scope of every Automaton.
const Top Scope = 0

func (s Scope) String() string {
	if s == Top {
		return "top"
	}
	return "c" + strconv.FormatUint(uint64(s), 10)
}

// Arena allocates Nodes and Scopes.
//
// Every handle an Arena returns is one it has never returned
// before.  Automata built from different Arenas can't be combined.
//
// An Arena is not safe for concurrent use.  Compile gets a fresh
// one for every call, so independent compilations don't share
// anything.
type Arena struct {
	nodes  uint32
	scopes uint32
}

// NewArena makes an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

// Node allocates a fresh Node.
func (a *Arena) Node() Node {
	a.nodes++
	return Node(a.nodes)
}

// Scope allocates a fresh Scope.
func (a *Arena) Scope() Scope {
	a.scopes++
	return Scope(a.scopes)
}

// Condition is a Node with a polarity.
//
// A Condition holds against a set of active nodes when the node's
// membership in that set equals Positive.  Conditions guard edges
// and declare acceptance.
type Condition struct {
	Node     Node `json:"node"`
	Positive bool `json:"positive"`
}

// Active is the positive Condition for the given node.
func Active(n Node) Condition {
	return Condition{Node: n, Positive: true}
}

// Inactive is the negative Condition for the given node.
func Inactive(n Node) Condition {
	return Condition{Node: n}
}

// Not flips the polarity.
func (c Condition) Not() Condition {
	return Condition{Node: c.Node, Positive: !c.Positive}
}

// Holds reports whether the Condition holds against the given set.
func (c Condition) Holds(active NodeSet) bool {
	return active.Has(c.Node) == c.Positive
}

func (c Condition) String() string {
	if c.Positive {
		return c.Node.String()
	}
	return "¬" + c.Node.String()
}

// NodeSet is a set of Nodes.
type NodeSet map[Node]struct{}

// NewNodeSet makes a set containing the given nodes.
func NewNodeSet(ns ...Node) NodeSet {
	s := make(NodeSet, len(ns))
	for _, n := range ns {
		s[n] = struct{}{}
	}
	return s
}

func (s NodeSet) Has(n Node) bool {
	_, have := s[n]
	return have
}

// Add reports whether n was not already in the set.
func (s NodeSet) Add(n Node) bool {
	if _, have := s[n]; have {
		return false
	}
	s[n] = struct{}{}
	return true
}

// Sorted returns the members in ascending order.
func (s NodeSet) Sorted() []Node {
	acc := make([]Node, 0, len(s))
	for n := range s {
		acc = append(acc, n)
	}
	slices.Sort(acc)
	return acc
}

func (s NodeSet) String() string {
	ns := s.Sorted()
	ss := make([]string, len(ns))
	for i, n := range ns {
		ss[i] = n.String()
	}
	return "{" + strings.Join(ss, ",") + "}"
}

// Predicate tests one symbol.
//
// The Name is only for humans (renderers, error messages, and
// Expression.String).  A Predicate is never inspected beyond
// calling Test.
type Predicate[S any] struct {
	Name string
	Test func(S) bool
}

// Always is a Predicate that accepts every symbol.
func Always[S any]() Predicate[S] {
	return Predicate[S]{
		Name: ".",
		Test: func(S) bool { return true },
	}
}

// Negate makes a Predicate that accepts exactly what p rejects.
func (p Predicate[S]) Negate() Predicate[S] {
	test := p.Test
	return Predicate[S]{
		Name: "~" + p.Name,
		Test: func(s S) bool { return !test(s) },
	}
}

// PredicateEdge consumes one symbol.  The edge can be followed
// when its Source holds and any of its Predicates accepts the
// symbol.
type PredicateEdge[S any] struct {
	Source     Condition
	Target     Node
	Predicates []Predicate[S]
}

// Accepts reports whether any predicate accepts the symbol.
func (e PredicateEdge[S]) Accepts(s S) bool {
	for _, p := range e.Predicates {
		if p.Test(s) {
			return true
		}
	}
	return false
}

// EpsilonEdge consumes nothing.  Its Target becomes active whenever
// its Source holds.
type EpsilonEdge struct {
	Source Condition `json:"source"`
	Target Node      `json:"target"`
}
