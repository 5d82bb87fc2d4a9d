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

package tools

import (
	"sort"

	"github.com/Comcast/regular/core"
)

// Analysis summarizes the structure of an automaton.
type Analysis struct {
	Errors []string `json:"errors,omitempty"`

	Nodes          int `json:"nodes"`
	PredicateEdges int `json:"predicateEdges"`
	EpsilonEdges   int `json:"epsilonEdges"`

	// NegativeEdges counts edges guarded by an inactive node.
	NegativeEdges int `json:"negativeEdges"`

	Scopes   int `json:"scopes"`
	MaxDepth int `json:"maxDepth"`

	// Exits counts edges that leave a complement scope for an
	// enclosing one.
	Exits int `json:"exits"`

	Initial    []core.Node    `json:"initial"`
	Acceptance core.Condition `json:"acceptance"`

	// Predicates lists the distinct predicate names.
	Predicates []string `json:"predicates,omitempty"`

	// Unreachable nodes can never become active.  A node is
	// reachable if it's initial, the entry of a scope, the target
	// of an edge guarded by an inactive node, or the target of an
	// edge from a reachable node.
	Unreachable []core.Node `json:"unreachable,omitempty"`

	// Dead nodes have no path, through edges of either polarity,
	// to the acceptance node.
	Dead []core.Node `json:"dead,omitempty"`
}

// Analyze examines the automaton.
func Analyze[S any](a *core.Automaton[S]) *Analysis {
	var (
		nodes = a.Nodes()
		preds = a.PredicateEdges()
		eps   = a.EpsilonEdges()
	)

	x := &Analysis{
		Nodes:          len(nodes),
		PredicateEdges: len(preds),
		EpsilonEdges:   len(eps),
		Scopes:         len(a.Scopes()),
		Initial:        a.Initial(),
		Acceptance:     a.Acceptance(),
	}

	if err := a.Check(); err != nil {
		x.Errors = append(x.Errors, err.Error())
	}

	var (
		forward  = make(map[core.Node][]core.Node)
		backward = make(map[core.Node][]core.Node)
		reached  = core.NewNodeSet(a.Initial()...)
		names    = make(map[string]bool)
	)

	edge := func(c core.Condition, to core.Node) {
		if !c.Positive {
			x.NegativeEdges++
			reached.Add(to)
		}
		if a.Depth(to) < a.Depth(c.Node) {
			x.Exits++
		}
		forward[c.Node] = append(forward[c.Node], to)
		backward[to] = append(backward[to], c.Node)
	}
	for _, e := range preds {
		edge(e.Source, e.Target)
		for _, p := range e.Predicates {
			names[p.Name] = true
		}
	}
	for _, e := range eps {
		edge(e.Source, e.Target)
	}

	for _, s := range a.Scopes() {
		for _, n := range a.Entry(s) {
			reached.Add(n)
		}
	}
	for _, n := range nodes {
		if d := a.Depth(n); x.MaxDepth < d {
			x.MaxDepth = d
		}
	}

	reached = closure(reached, forward)
	live := closure(core.NewNodeSet(x.Acceptance.Node), backward)

	for _, n := range nodes {
		if !reached.Has(n) {
			x.Unreachable = append(x.Unreachable, n)
		}
		if !live.Has(n) {
			x.Dead = append(x.Dead, n)
		}
	}

	for name := range names {
		x.Predicates = append(x.Predicates, name)
	}
	sort.Strings(x.Predicates)

	return x
}

// closure adds everything reachable through the given edges.
func closure(seeds core.NodeSet, edges map[core.Node][]core.Node) core.NodeSet {
	pending := seeds.Sorted()
	for 0 < len(pending) {
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, m := range edges[n] {
			if seeds.Add(m) {
				pending = append(pending, m)
			}
		}
	}
	return seeds
}
