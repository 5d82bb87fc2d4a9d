package core

import (
	"slices"
	"strconv"
	"strings"
)

// The matching engine keeps one run per way of being inside a
// complement scope.  A run has the active nodes of its own level and,
// for each child scope, the distinct runs of that child.  A child
// run never looks at its parent, so every level is closed with a
// monotone fixpoint:
//
//   - a positive condition holds when its node is active at the
//     level;
//   - a negative condition holds when some run of the child scope
//     that owns the node lacks it;
//   - an epsilon edge into a child scope starts a new run of that
//     child with the child's entry nodes.
//
// Adding nodes or runs never disables an edge, so iterating to a
// fixpoint is correct even with cycles through complements.

// plan is the per-level index the engine uses.
type plan struct {
	levels map[Scope]*level
}

type level struct {
	scope Scope

	// direct are entry nodes owned by the level itself.
	direct []Node

	// enter are child scopes whose runs start with the level's.
	enter []Scope

	hops []hop
}

// hop is an epsilon edge as seen from the level that evaluates it.
type hop struct {
	source Condition

	// guard is the scope that owns the source node.
	guard Scope

	target Node

	// into is the level itself or the child scope to enter.
	into Scope
}

func (a *Automaton[S]) plan() (*plan, *InvariantViolation) {
	a.once.Do(func() {
		a.compiled, a.violation = a.makePlan()
	})
	return a.compiled, a.violation
}

func (a *Automaton[S]) mustPlan() *plan {
	p, v := a.plan()
	if v != nil {
		panic(v)
	}
	return p
}

// childToward returns the child scope of lvl that contains scope s.
func (a *Automaton[S]) childToward(lvl, s Scope) (Scope, bool) {
	for s != Top {
		parent := a.scopes[s].parent
		if parent == lvl {
			return s, true
		}
		s = parent
	}
	return Top, false
}

// levelOf returns the level at which a condition is evaluated.
func (a *Automaton[S]) levelOf(c Condition) (Scope, bool) {
	s, have := a.owner[c.Node]
	if !have {
		return Top, false
	}
	if c.Positive {
		return s, true
	}
	if s == Top {
		return Top, false
	}
	return a.scopes[s].parent, true
}

func (a *Automaton[S]) makePlan() (*plan, *InvariantViolation) {
	p := &plan{
		levels: map[Scope]*level{
			Top: {scope: Top},
		},
	}
	for s := range a.scopes {
		p.levels[s] = &level{scope: s}
	}

	// target places a node at a level, either directly or as an
	// entry of a child scope.
	target := func(op string, lvl Scope, n Node) (Scope, *InvariantViolation) {
		s, have := a.owner[n]
		if !have {
			return Top, violation(op, "unknown node", n)
		}
		if s == lvl {
			return lvl, nil
		}
		child, ok := a.childToward(lvl, s)
		if !ok {
			return Top, violation(op, "node not reachable from level "+lvl.String(), n)
		}
		if !slices.Contains(a.scopes[child].entry, n) {
			return Top, violation(op, "node is not an entry of "+child.String(), n)
		}
		return child, nil
	}

	for s, lv := range p.levels {
		for _, n := range a.Entry(s) {
			into, v := target("entry", s, n)
			if v != nil {
				return nil, v
			}
			if into == s {
				lv.direct = append(lv.direct, n)
			} else if !slices.Contains(lv.enter, into) {
				lv.enter = append(lv.enter, into)
			}
		}
		slices.Sort(lv.enter)
	}

	for _, e := range a.epsilons {
		lvl, ok := a.levelOf(e.Source)
		if !ok {
			return nil, violation("epsilon", "source can't be evaluated at any level", e.Source.Node)
		}
		into, v := target("epsilon", lvl, e.Target)
		if v != nil {
			return nil, v
		}
		p.levels[lvl].hops = append(p.levels[lvl].hops, hop{
			source: e.Source,
			guard:  a.owner[e.Source.Node],
			target: e.Target,
			into:   into,
		})
	}

	for n, e := range a.preds {
		if !e.Source.Positive {
			return nil, violation("predicate", "negative source", n)
		}
		from, have := a.owner[n]
		if !have {
			return nil, violation("predicate", "unknown source", n)
		}
		if to, have := a.owner[e.Target]; !have || to != from {
			return nil, violation("predicate", "edge crosses scopes", n, e.Target)
		}
	}

	if lvl, ok := a.levelOf(a.accept); !ok || lvl != Top {
		return nil, violation("acceptance", "not evaluated at top level", a.accept.Node)
	}

	return p, nil
}

// run is the state of one level.
type run struct {
	scope    Scope
	nodes    NodeSet
	children map[Scope]map[string]*run

	// key is the canonical content, set once the run is closed.
	key string
}

func newRun(s Scope) *run {
	return &run{
		scope:    s,
		nodes:    make(NodeSet),
		children: make(map[Scope]map[string]*run),
	}
}

// adopt adds a closed child run unless an identical one is present.
func (r *run) adopt(c *run) bool {
	m, have := r.children[c.scope]
	if !have {
		m = make(map[string]*run)
		r.children[c.scope] = m
	}
	if _, have := m[c.key]; have {
		return false
	}
	m[c.key] = c
	return true
}

func (r *run) holds(c Condition, guard Scope) bool {
	if c.Positive {
		return r.nodes.Has(c.Node)
	}
	for _, child := range r.children[guard] {
		if !child.nodes.Has(c.Node) {
			return true
		}
	}
	return false
}

func (r *run) canonical() string {
	var b strings.Builder
	for i, n := range r.nodes.Sorted() {
		if 0 < i {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(n), 10))
	}
	scopes := make([]Scope, 0, len(r.children))
	for s := range r.children {
		scopes = append(scopes, s)
	}
	slices.Sort(scopes)
	for _, s := range scopes {
		keys := make([]string, 0, len(r.children[s]))
		for k := range r.children[s] {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteString(";" + s.String() + ":[")
		b.WriteString(strings.Join(keys, "|"))
		b.WriteByte(']')
	}
	return b.String()
}

// each calls f on r and all of its descendants.
func (r *run) each(f func(*run)) {
	f(r)
	for _, m := range r.children {
		for _, c := range m {
			c.each(f)
		}
	}
}

// start makes a closed run of the scope from its entry nodes.
func (a *Automaton[S]) start(p *plan, s Scope) *run {
	lv := p.levels[s]
	r := newRun(s)
	for _, n := range lv.direct {
		r.nodes.Add(n)
	}
	started := make(map[Scope]bool, len(lv.enter))
	for _, c := range lv.enter {
		a.enter(p, r, c, started)
	}
	a.close(p, r, started)
	return r
}

func (a *Automaton[S]) enter(p *plan, r *run, c Scope, started map[Scope]bool) bool {
	if started[c] {
		return false
	}
	started[c] = true
	return r.adopt(a.start(p, c))
}

// close computes the epsilon closure of a run at its own level.  Its
// child runs must already be closed.
func (a *Automaton[S]) close(p *plan, r *run, started map[Scope]bool) {
	lv := p.levels[r.scope]
	for changed := true; changed; {
		changed = false
		for _, h := range lv.hops {
			if !r.holds(h.source, h.guard) {
				continue
			}
			if h.into == r.scope {
				if r.nodes.Add(h.target) {
					changed = true
				}
				continue
			}
			if a.enter(p, r, h.into, started) {
				changed = true
			}
		}
	}
	r.key = r.canonical()
}

// advance follows the predicate edges of a run and of all its child
// runs for one symbol, then closes the result.
func (a *Automaton[S]) advance(p *plan, r *run, sym S) *run {
	next := newRun(r.scope)
	for _, n := range r.nodes.Sorted() {
		if e, have := a.preds[n]; have && e.Accepts(sym) {
			next.nodes.Add(e.Target)
		}
	}
	for _, m := range r.children {
		for _, c := range m {
			next.adopt(a.advance(p, c, sym))
		}
	}
	a.close(p, next, make(map[Scope]bool))
	return next
}
